// Package inmemory provides an in-process turn store for tests and local
// development.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aupherehq/recall/pkg/conversation"
	"github.com/aupherehq/recall/pkg/storage"
)

// Driver implements storage.TurnStore using an in-memory slice per session.
type Driver struct {
	mu sync.RWMutex

	// turns holds every appended turn in append order.
	turns []*conversation.Turn
}

// NewDriver creates an empty in-memory turn store.
func NewDriver() *Driver {
	return &Driver{}
}

// Append records the turn. Identifier and timestamp are assigned when unset.
func (d *Driver) Append(_ context.Context, turn *conversation.Turn) (string, error) {
	if err := turn.Validate(); err != nil {
		return "", &storage.StorageError{Op: "append", Err: err}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	copied := *turn
	d.turns = append(d.turns, &copied)

	return turn.ID, nil
}

// RecentForSession returns up to limit most recent turns for the session,
// oldest-first.
func (d *Driver) RecentForSession(_ context.Context, sessionID string, limit int) ([]*conversation.Turn, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var matched []*conversation.Turn
	for _, turn := range d.turns {
		if turn.SessionID == sessionID {
			matched = append(matched, turn)
		}
	}

	sortByCreation(matched)

	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}

	return copyTurns(matched), nil
}

// RecentForUser returns up to limit most recent turns for the user across
// sessions, newest-first.
func (d *Driver) RecentForUser(_ context.Context, userID string, limit int, since time.Time) ([]*conversation.Turn, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var matched []*conversation.Turn
	for _, turn := range d.turns {
		if turn.UserID != userID {
			continue
		}
		if !since.IsZero() && turn.CreatedAt.Before(since) {
			continue
		}
		matched = append(matched, turn)
	}

	sortByCreation(matched)

	// Newest-first.
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}

	if len(matched) > limit {
		matched = matched[:limit]
	}

	return copyTurns(matched), nil
}

// Sessions lists the user's sessions, most recently active first.
func (d *Driver) Sessions(_ context.Context, userID string, limit int) ([]conversation.Session, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	bySession := make(map[string]*conversation.Session)
	for _, turn := range d.turns {
		if turn.UserID != userID {
			continue
		}
		s, ok := bySession[turn.SessionID]
		if !ok {
			s = &conversation.Session{SessionID: turn.SessionID, UserID: userID}
			bySession[turn.SessionID] = s
		}
		s.TurnCount++
		if turn.CreatedAt.After(s.LastTurnAt) {
			s.LastTurnAt = turn.CreatedAt
		}
	}

	sessions := make([]conversation.Session, 0, len(bySession))
	for _, s := range bySession {
		sessions = append(sessions, *s)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].LastTurnAt.Equal(sessions[j].LastTurnAt) {
			return sessions[i].LastTurnAt.After(sessions[j].LastTurnAt)
		}
		return sessions[i].SessionID < sessions[j].SessionID
	})

	if len(sessions) > limit {
		sessions = sessions[:limit]
	}

	return sessions, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

// sortByCreation orders turns oldest-first, breaking timestamp ties by
// append order being already stable (sort.SliceStable).
func sortByCreation(turns []*conversation.Turn) {
	sort.SliceStable(turns, func(i, j int) bool {
		return turns[i].CreatedAt.Before(turns[j].CreatedAt)
	})
}

// copyTurns returns shallow copies so callers can't mutate stored state.
func copyTurns(turns []*conversation.Turn) []*conversation.Turn {
	out := make([]*conversation.Turn, len(turns))
	for i, turn := range turns {
		copied := *turn
		out[i] = &copied
	}
	return out
}
