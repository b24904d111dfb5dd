package memctx

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aupherehq/recall/pkg/conversation"
)

// Snapshot is the assembled, immutable memory object handed to a caller for
// one request. Constructed fresh per request (or rehydrated unchanged from
// cache) and discarded when the request completes.
type Snapshot struct {
	// Working memory: the request being answered right now.
	CurrentQuery    string `json:"current_query"`
	CurrentLanguage string `json:"current_language"`

	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`

	// RecentTurns is the short-term window, oldest-first, in full detail.
	RecentTurns []*conversation.Turn `json:"recent_turns"`

	// Summary digests turns older than the recent window. Empty when the
	// history fits in the window.
	Summary string `json:"summary,omitempty"`

	// EntityRefs resolve ordinal references against recently shown
	// entities, newest-turn-first.
	EntityRefs []EntityReference `json:"entity_refs,omitempty"`

	// TotalTurns is the session turn count observed when the snapshot was
	// built.
	TotalTurns int `json:"total_turns"`

	// EstimatedTokens is the approximate token cost of RecentTurns plus
	// Summary after any compression.
	EstimatedTokens int `json:"estimated_tokens"`
}

// Render produces the prompt-ready textual form of the snapshot: session
// summary, recent exchanges with entity annotations, then the current query.
func (s *Snapshot) Render() string {
	var b strings.Builder

	b.WriteString("# Conversation History\n")
	fmt.Fprintf(&b, "Total turns: %d\n\n", s.TotalTurns)

	if s.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", s.Summary)
	}

	for _, turn := range s.RecentTurns {
		fmt.Fprintf(&b, "User: %s\n", turn.Query)
		fmt.Fprintf(&b, "Assistant: %s\n", turn.Response)
		if len(turn.Entities) > 0 {
			names := make([]string, len(turn.Entities))
			for i, e := range turn.Entities {
				names[i] = fmt.Sprintf("%d. %s", i+1, e.Name)
			}
			fmt.Fprintf(&b, "Places mentioned: %s\n", strings.Join(names, ", "))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "User: %s\n", s.CurrentQuery)

	return b.String()
}

// projection is the serializable slice of a snapshot held by the cache.
// It carries everything except the per-request query and language, which
// the assembler merges back in on a hit.
type projection struct {
	SessionID       string               `json:"session_id"`
	UserID          string               `json:"user_id"`
	RecentTurns     []*conversation.Turn `json:"recent_turns"`
	Summary         string               `json:"summary,omitempty"`
	EntityRefs      []EntityReference    `json:"entity_refs,omitempty"`
	TotalTurns      int                  `json:"total_turns"`
	EstimatedTokens int                  `json:"estimated_tokens"`
}

func (s *Snapshot) toProjection() projection {
	return projection{
		SessionID:       s.SessionID,
		UserID:          s.UserID,
		RecentTurns:     s.RecentTurns,
		Summary:         s.Summary,
		EntityRefs:      s.EntityRefs,
		TotalTurns:      s.TotalTurns,
		EstimatedTokens: s.EstimatedTokens,
	}
}

func encodeProjection(p projection) ([]byte, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode projection: %w", err)
	}
	return payload, nil
}

func decodeProjection(payload []byte) (projection, error) {
	var p projection
	if err := json.Unmarshal(payload, &p); err != nil {
		return projection{}, fmt.Errorf("decode projection: %w", err)
	}
	return p, nil
}

// snapshotFromProjection rehydrates a cached projection, merging in the
// per-request query and language.
func snapshotFromProjection(p projection, query, language string) *Snapshot {
	return &Snapshot{
		CurrentQuery:    query,
		CurrentLanguage: language,
		SessionID:       p.SessionID,
		UserID:          p.UserID,
		RecentTurns:     p.RecentTurns,
		Summary:         p.Summary,
		EntityRefs:      p.EntityRefs,
		TotalTurns:      p.TotalTurns,
		EstimatedTokens: p.EstimatedTokens,
	}
}
