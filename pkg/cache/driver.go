// Package cache defines the short-TTL snapshot cache contract.
//
// The cache holds serialized snapshot projections keyed by session so the
// assembler can skip storage reads on bursts of requests within the same
// session. The caller that appends a new turn owns invalidation: the
// assembler never appends and therefore cannot self-invalidate. Cache
// unavailability degrades to always-miss; the assembler logs failures and
// never propagates them.
package cache

import (
	"context"
	"time"
)

// Driver handles storage and recall of serialized snapshot projections.
// Payloads are opaque bytes; the memctx package owns their encoding.
type Driver interface {
	// Get returns the payload for key and whether it was present. A miss
	// is (nil, false, nil), never an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores the payload under key with the given TTL.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// Invalidate drops the entry for key. Missing keys are a no-op.
	Invalidate(ctx context.Context, key string) error

	// Close releases driver resources.
	Close() error
}

const keyPrefix = "recall"

// SessionKey builds the cache key for a session's context projection.
func SessionKey(sessionID string) string {
	return keyPrefix + ":context:" + sessionID
}

// UserPatternsKey builds the cache key for a user's interaction patterns.
func UserPatternsKey(userID string) string {
	return keyPrefix + ":patterns:" + userID
}
