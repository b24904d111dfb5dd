// Package recorder implements the post-response contract: after the agent
// produces a reply, the finished turn is appended to the store, the
// session's cached context is invalidated, and a turn event is published.
//
// The append is the one operation that must succeed; invalidation and
// publishing are best-effort. A missed invalidation only widens the
// accepted staleness window to the cache TTL, and events are advisory.
package recorder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aupherehq/recall/pkg/cache"
	"github.com/aupherehq/recall/pkg/conversation"
	"github.com/aupherehq/recall/pkg/eventstream"
	"github.com/aupherehq/recall/pkg/storage"
)

// Options configures a new Recorder.
type Options struct {
	// Store is the turn store. Required.
	Store storage.TurnStore

	// Cache is the snapshot cache to invalidate. Nil skips invalidation.
	Cache cache.Driver

	// Publisher emits turn events. Nil skips publishing.
	Publisher eventstream.Publisher

	// Logger is the structured logger. Nil selects slog.Default().
	Logger *slog.Logger
}

// Recorder persists finished turns and keeps the cache honest.
type Recorder struct {
	store     storage.TurnStore
	cache     cache.Driver
	publisher eventstream.Publisher
	logger    *slog.Logger
}

// New creates a Recorder from the given options.
func New(opts Options) (*Recorder, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("recorder requires a turn store")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Recorder{
		store:     opts.Store,
		cache:     opts.Cache,
		publisher: opts.Publisher,
		logger:    logger,
	}, nil
}

// Record appends the turn, invalidates the session's cached context, and
// publishes a turn event. Returns the turn identifier assigned by the store.
func (r *Recorder) Record(ctx context.Context, turn *conversation.Turn) (string, error) {
	if turn == nil {
		return "", fmt.Errorf("nil turn")
	}

	if dropped := turn.BoundEntities(); dropped > 0 {
		r.logger.Debug("entity list truncated",
			"session_id", turn.SessionID,
			"dropped", dropped,
		)
	}

	id, err := r.store.Append(ctx, turn)
	if err != nil {
		return "", fmt.Errorf("append turn: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.Invalidate(ctx, cache.SessionKey(turn.SessionID)); err != nil {
			r.logger.Warn("cache invalidation failed, stale context possible until TTL",
				"session_id", turn.SessionID,
				"error", err,
			)
		}
	}

	if r.publisher != nil {
		event := eventstream.NewTurnAppendedEvent(id, turn.SessionID, turn.UserID, turn.Label, turn.CreatedAt)
		if err := r.publisher.PublishTurnAppended(ctx, event); err != nil {
			r.logger.Warn("turn event publish failed",
				"turn_id", id,
				"error", err,
			)
		}
	}

	r.logger.Debug("turn recorded",
		"turn_id", id,
		"session_id", turn.SessionID,
		"label", turn.Label,
	)

	return id, nil
}
