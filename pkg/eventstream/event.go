package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnAppended is emitted after a conversation turn is
	// appended to the turn store.
	EventTypeTurnAppended = "recall.turn.appended"
)

// TurnAppendedEvent is a transport-neutral payload announcing a persisted
// turn. Downstream consumers (analytics, cache warmers) key on the session.
type TurnAppendedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	TurnID        string    `json:"turn_id"`
	SessionID     string    `json:"session_id"`
	UserID        string    `json:"user_id"`
	Label         string    `json:"label,omitempty"`
	TurnCreatedAt time.Time `json:"turn_created_at"`
}

// NewTurnAppendedEvent builds a v1 event for the given turn identifiers.
func NewTurnAppendedEvent(turnID, sessionID, userID, label string, createdAt time.Time) *TurnAppendedEvent {
	return &TurnAppendedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnAppended,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		TurnID:        turnID,
		SessionID:     sessionID,
		UserID:        userID,
		Label:         label,
		TurnCreatedAt: createdAt,
	}
}
