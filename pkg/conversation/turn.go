// Package conversation defines the domain types for the recall memory core:
// turns, sessions, referenced entities, and the tagged metadata attached to
// each turn.
package conversation

import (
	"fmt"
	"time"
)

// MaxEntitiesPerTurn bounds how many referenced entities a single turn may
// record. Entities past the bound are dropped at record time so that memory
// growth stays bounded regardless of what the upstream agent returns.
const MaxEntitiesPerTurn = 10

// Entity is a structured mention extracted from a turn, typically a place the
// agent surfaced in its response. Name is required; everything else rides in
// Attrs.
type Entity struct {
	Name  string         `json:"name"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Turn is one user query + agent response exchange within a session.
// Turns are append-only: created once after the agent call completes, never
// mutated, never deleted by this core.
type Turn struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	UserID        string    `json:"user_id"`
	Query         string    `json:"query"`
	QueryLanguage string    `json:"query_language"`
	Response      string    `json:"response"`
	Entities      []Entity  `json:"entities,omitempty"`
	Label         string    `json:"label"`
	Confidence    float64   `json:"confidence"`
	Metadata      Metadata  `json:"metadata"`
	CreatedAt     time.Time `json:"created_at"`
}

// Validate checks the invariants a turn must satisfy before it may be
// appended to a store.
func (t *Turn) Validate() error {
	if t == nil {
		return fmt.Errorf("nil turn")
	}
	if t.SessionID == "" {
		return fmt.Errorf("turn missing session id")
	}
	if t.UserID == "" {
		return fmt.Errorf("turn missing user id")
	}
	if t.Query == "" {
		return fmt.Errorf("turn missing query")
	}
	if t.Confidence < 0 || t.Confidence > 1 {
		return fmt.Errorf("turn confidence %v outside [0,1]", t.Confidence)
	}
	if len(t.Entities) > MaxEntitiesPerTurn {
		return fmt.Errorf("turn records %d entities, max is %d", len(t.Entities), MaxEntitiesPerTurn)
	}
	return nil
}

// BoundEntities truncates the entity list to MaxEntitiesPerTurn, preserving
// the original order. Returns the number of entities dropped.
func (t *Turn) BoundEntities() int {
	if len(t.Entities) <= MaxEntitiesPerTurn {
		return 0
	}
	dropped := len(t.Entities) - MaxEntitiesPerTurn
	t.Entities = t.Entities[:MaxEntitiesPerTurn]
	return dropped
}

// Session summarizes a logical conversation thread. A session's identity is
// derived from the turns that share its identifier; stores compute these
// rows, nothing persists them separately.
type Session struct {
	SessionID  string    `json:"session_id"`
	UserID     string    `json:"user_id"`
	TurnCount  int       `json:"turn_count"`
	LastTurnAt time.Time `json:"last_turn_at"`
}
