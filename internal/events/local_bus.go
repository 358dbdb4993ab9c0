package events

import (
	"context"

	"github.com/google/uuid"
)

// LocalBus delivers straight to the sink without redis. Single-instance
// deployments and tests use it.
type LocalBus struct {
	sink Sink
}

func NewLocalBus(sink Sink) *LocalBus {
	return &LocalBus{sink: sink}
}

func (b *LocalBus) Publish(ctx context.Context, name string, payload any) error {
	event, err := newEvent(name, nil, payload)
	if err != nil {
		return err
	}
	b.sink.Deliver(event)
	return nil
}

func (b *LocalBus) PublishToUser(ctx context.Context, userID uuid.UUID, name string, payload any) error {
	event, err := newEvent(name, &userID, payload)
	if err != nil {
		return err
	}
	b.sink.Deliver(event)
	return nil
}
