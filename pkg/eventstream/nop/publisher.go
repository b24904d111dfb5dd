package nop

import (
	"context"

	"github.com/aupherehq/recall/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishTurnAppended validates input and otherwise does nothing.
func (p *Publisher) PublishTurnAppended(_ context.Context, event *eventstream.TurnAppendedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
