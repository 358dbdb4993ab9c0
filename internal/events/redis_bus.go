package events

import (
	"context"
	"encoding/json"

	"mingle-server/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const busChannel = "mingle:events"

// RedisBus fans events out over redis pub/sub so every API instance delivers
// to its own connected sockets. Publish failures are surfaced to the caller
// only so it can log them; nothing retries.
type RedisBus struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisBus(client *redis.Client, log *logger.Logger) *RedisBus {
	return &RedisBus{client: client, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, name string, payload any) error {
	event, err := newEvent(name, nil, payload)
	if err != nil {
		return err
	}
	return b.publish(ctx, event)
}

func (b *RedisBus) PublishToUser(ctx context.Context, userID uuid.UUID, name string, payload any) error {
	event, err := newEvent(name, &userID, payload)
	if err != nil {
		return err
	}
	return b.publish(ctx, event)
}

func (b *RedisBus) publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, busChannel, data).Err()
}

// Subscribe forwards every event published on the bus channel to sink until
// ctx is cancelled. Malformed payloads are logged and skipped.
func (b *RedisBus) Subscribe(ctx context.Context, sink Sink) {
	pubsub := b.client.Subscribe(ctx, busChannel)

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.log.Errorf("events: bad envelope: %v", err)
					continue
				}
				sink.Deliver(event)
			case <-ctx.Done():
				return
			}
		}
	}()
}
