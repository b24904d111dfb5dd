package memctx

import "github.com/aupherehq/recall/pkg/conversation"

// tokenDivisor is the chars-per-token heuristic. English and Spanish text
// both land near 4 characters per model token; the estimate only drives
// compression thresholds, so it never needs to match a real tokenizer.
const tokenDivisor = 4

// Estimate approximates the model-token cost of text. Deterministic and
// monotonic in input length: longer text never estimates smaller.
func Estimate(text string) int {
	return len(text) / tokenDivisor
}

// EstimateTurns sums the query and response estimates across turns.
func EstimateTurns(turns []*conversation.Turn) int {
	total := 0
	for _, turn := range turns {
		total += Estimate(turn.Query)
		total += Estimate(turn.Response)
	}
	return total
}
