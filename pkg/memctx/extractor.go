package memctx

import "github.com/aupherehq/recall/pkg/conversation"

// EntityReference is an entity pulled from a recent turn, annotated with
// enough position data to resolve expressions like "the second one".
type EntityReference struct {
	Entity conversation.Entity `json:"entity"`

	// PositionInTurn is the entity's 1-based position within its turn.
	PositionInTurn int `json:"position_in_turn"`

	// TurnsBack is how many turns ago the entity appeared: 1 for the most
	// recent turn, 2 for the one before it.
	TurnsBack int `json:"turns_back"`
}

// ExtractEntityRefs flattens the entities of the last scanTurns turns into a
// single reference list. Input turns are oldest-first; output is ordered
// newest-turn-first, preserving each turn's original entity order. Turns
// without entities contribute nothing.
func ExtractEntityRefs(turns []*conversation.Turn, scanTurns, maxPerTurn int) []EntityReference {
	if len(turns) == 0 || scanTurns <= 0 {
		return nil
	}

	if len(turns) > scanTurns {
		turns = turns[len(turns)-scanTurns:]
	}

	var refs []EntityReference
	for back := 1; back <= len(turns); back++ {
		turn := turns[len(turns)-back]

		entities := turn.Entities
		if len(entities) > maxPerTurn {
			entities = entities[:maxPerTurn]
		}

		for i, entity := range entities {
			refs = append(refs, EntityReference{
				Entity:         entity,
				PositionInTurn: i + 1,
				TurnsBack:      back,
			})
		}
	}

	return refs
}
