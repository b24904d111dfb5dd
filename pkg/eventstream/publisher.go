// Package eventstream publishes turn lifecycle events to a stream backend.
package eventstream

import "context"

// Publisher publishes turn events to an event stream backend.
type Publisher interface {
	PublishTurnAppended(ctx context.Context, event *TurnAppendedEvent) error
	Close() error
}
