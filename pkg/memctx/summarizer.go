package memctx

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aupherehq/recall/pkg/conversation"
)

// Summarizer collapses turns outside the short-term window into a compact
// digest. Implementations may be rule-based or model-backed; callers only
// see the string.
type Summarizer interface {
	// Summarize returns a digest of the given turns, or "" when there is
	// nothing to summarize. An empty result means "no summary available",
	// not a short summary.
	Summarize(turns []*conversation.Turn) string
}

// RuleSummarizer produces a counting-based digest: how many older turns
// there are, which classification labels dominated, and how many entities
// came up. Deliberately non-semantic.
type RuleSummarizer struct{}

// Summarize builds the digest. Labels are listed most frequent first, ties
// broken alphabetically so the output is deterministic.
func (RuleSummarizer) Summarize(turns []*conversation.Turn) string {
	if len(turns) == 0 {
		return ""
	}

	labelCounts := make(map[string]int)
	totalEntities := 0
	for _, turn := range turns {
		if turn.Label != "" {
			labelCounts[turn.Label]++
		}
		totalEntities += len(turn.Entities)
	}

	parts := []string{
		fmt.Sprintf("Conversación previa: %d mensajes anteriores.", len(turns)),
	}

	if len(labelCounts) > 0 {
		labels := make([]string, 0, len(labelCounts))
		for label := range labelCounts {
			labels = append(labels, label)
		}
		sort.Slice(labels, func(i, j int) bool {
			if labelCounts[labels[i]] != labelCounts[labels[j]] {
				return labelCounts[labels[i]] > labelCounts[labels[j]]
			}
			return labels[i] < labels[j]
		})

		pairs := make([]string, len(labels))
		for i, label := range labels {
			pairs[i] = fmt.Sprintf("%s: %d", label, labelCounts[label])
		}
		parts = append(parts, fmt.Sprintf("Temas: %s.", strings.Join(pairs, ", ")))
	}

	if totalEntities > 0 {
		parts = append(parts, fmt.Sprintf("Se discutieron %d lugares en total.", totalEntities))
	}

	return strings.Join(parts, " ")
}
