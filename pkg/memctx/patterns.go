package memctx

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/aupherehq/recall/pkg/cache"
)

// patternsTTL is how long computed user patterns stay cached. Patterns move
// slowly, so this is much longer than the context TTL.
const patternsTTL = time.Hour

// patternsTurnLimit is how many turns feed the pattern analysis.
const patternsTurnLimit = 50

// UserPatterns summarizes a user's interaction habits across sessions, used
// by personalization outside this core.
type UserPatterns struct {
	TotalInteractions int            `json:"total_interactions"`
	FavoriteLabel     string         `json:"favorite_label,omitempty"`
	LabelDistribution map[string]int `json:"label_distribution,omitempty"`
	AvgConfidence     float64        `json:"avg_confidence"`

	// Languages the user queried in, most common first.
	Languages []string `json:"languages,omitempty"`

	LastInteraction time.Time `json:"last_interaction,omitzero"`
}

// UserPatterns analyzes the user's recent turns across sessions. The window
// bounds how far back to look; zero means no time bound. Results are cached
// for an hour.
func (a *Assembler) UserPatterns(ctx context.Context, userID string, window time.Duration) (*UserPatterns, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "must not be empty"}
	}

	key := cache.UserPatternsKey(userID)
	if a.cache != nil {
		if payload, ok, err := a.cache.Get(ctx, key); err != nil {
			a.logger.Warn("patterns cache read failed, treating as miss",
				"user_id", userID,
				"error", err,
			)
		} else if ok {
			var patterns UserPatterns
			if err := json.Unmarshal(payload, &patterns); err == nil {
				return &patterns, nil
			}
		}
	}

	var since time.Time
	if window > 0 {
		since = time.Now().Add(-window)
	}

	turns, err := a.store.RecentForUser(ctx, userID, patternsTurnLimit, since)
	if err != nil {
		return nil, fmt.Errorf("load user history: %w", err)
	}

	patterns := &UserPatterns{
		TotalInteractions: len(turns),
	}

	if len(turns) > 0 {
		labels := make(map[string]int)
		languages := make(map[string]int)
		confidenceSum := 0.0

		for _, turn := range turns {
			if turn.Label != "" {
				labels[turn.Label]++
			}
			if turn.QueryLanguage != "" {
				languages[turn.QueryLanguage]++
			}
			confidenceSum += turn.Confidence
		}

		patterns.LabelDistribution = labels
		patterns.FavoriteLabel = topKey(labels)
		patterns.AvgConfidence = confidenceSum / float64(len(turns))
		patterns.Languages = rankedKeys(languages)
		// Turns arrive newest-first.
		patterns.LastInteraction = turns[0].CreatedAt
	}

	if a.cache != nil {
		if payload, err := json.Marshal(patterns); err == nil {
			if err := a.cache.Set(ctx, key, payload, patternsTTL); err != nil {
				a.logger.Warn("patterns cache write failed",
					"user_id", userID,
					"error", err,
				)
			}
		}
	}

	return patterns, nil
}

// topKey returns the key with the highest count, ties broken alphabetically.
func topKey(counts map[string]int) string {
	best := ""
	for key, count := range counts {
		if best == "" || count > counts[best] || (count == counts[best] && key < best) {
			best = key
		}
	}
	return best
}

// rankedKeys returns keys ordered by count descending, ties alphabetical.
func rankedKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
