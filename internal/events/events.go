package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event names carried over the realtime channel.
const (
	EventMessage      = "message"      // coarse invalidation signal, no payload
	EventNotification = "notification" // addressed, carries the notification
)

// Event is the wire envelope. UserID nil means broadcast to every
// connection; otherwise delivery is limited to that user's connections.
type Event struct {
	Name      string          `json:"name"`
	UserID    *uuid.UUID      `json:"user_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// Bus is the fire-and-forget publish side. Delivery is at most once, best
// effort: a user with no connections simply misses the event, and durability
// comes from the stores, not from here.
type Bus interface {
	Publish(ctx context.Context, name string, payload any) error
	PublishToUser(ctx context.Context, userID uuid.UUID, name string, payload any) error
}

// Sink receives events on the consuming side; the websocket hub implements it.
type Sink interface {
	Deliver(event Event)
}

func newEvent(name string, userID *uuid.UUID, payload any) (Event, error) {
	e := Event{
		Name:      name,
		UserID:    userID,
		Timestamp: time.Now().UnixMilli(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Event{}, err
		}
		e.Payload = data
	}
	return e, nil
}
