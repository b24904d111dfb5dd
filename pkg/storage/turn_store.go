// Package storage defines the turn store contract and its error types.
// Drivers live in subpackages (sqlite, postgres, inmemory) and are selected
// via configuration.
package storage

import (
	"context"
	"time"

	"github.com/aupherehq/recall/pkg/conversation"
)

// TurnStore is the durable, append-only log of conversation turns.
//
// Appended turns become visible to subsequent reads for their session in
// creation order. There are no update or delete operations; retention is an
// out-of-scope concern.
type TurnStore interface {
	// Append persists a fully-populated turn and returns its identifier.
	// Drivers assign the identifier and creation timestamp when unset.
	Append(ctx context.Context, turn *conversation.Turn) (string, error)

	// RecentForSession returns up to limit most recent turns for the
	// session, ordered oldest-first. A session with no turns yields an
	// empty slice, not an error.
	RecentForSession(ctx context.Context, sessionID string, limit int) ([]*conversation.Turn, error)

	// RecentForUser returns up to limit most recent turns for the user
	// across all sessions, newest-first. A zero since means no time
	// filter.
	RecentForUser(ctx context.Context, userID string, limit int, since time.Time) ([]*conversation.Turn, error)

	// Sessions lists the user's sessions with turn counts and last-turn
	// timestamps, most recently active first.
	Sessions(ctx context.Context, userID string, limit int) ([]conversation.Session, error)

	// Close releases the driver's resources.
	Close() error
}
