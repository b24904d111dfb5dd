package conversation

import (
	"encoding/json"
	"fmt"
)

// MetadataKind discriminates the known metadata shapes a turn can carry.
type MetadataKind string

const (
	// MetadataNone marks a turn with no structured metadata.
	MetadataNone MetadataKind = "none"

	// MetadataPlan marks metadata describing an in-progress itinerary plan.
	MetadataPlan MetadataKind = "plan"

	// MetadataQuery marks metadata describing how the query was processed.
	MetadataQuery MetadataKind = "query"

	// MetadataExtra marks a free-form bag kept for forward compatibility
	// with producers this core doesn't know about.
	MetadataExtra MetadataKind = "extra"
)

// PlanMetadata tracks the context gathered so far for a multi-stop plan.
type PlanMetadata struct {
	Duration   string   `json:"duration,omitempty"`
	NumPeople  int      `json:"num_people,omitempty"`
	Cities     []string `json:"cities,omitempty"`
	PlaceTypes []string `json:"place_types,omitempty"`
	Vibe       string   `json:"vibe,omitempty"`
	Budget     string   `json:"budget,omitempty"`
	Transport  string   `json:"transport,omitempty"`
}

// MissingFields reports which of the fields required to build a plan are
// still unset, in a fixed order.
func (p *PlanMetadata) MissingFields() []string {
	var missing []string
	if p.Duration == "" {
		missing = append(missing, "duration")
	}
	if p.NumPeople == 0 {
		missing = append(missing, "num_people")
	}
	if len(p.Cities) == 0 {
		missing = append(missing, "cities")
	}
	if len(p.PlaceTypes) == 0 {
		missing = append(missing, "place_types")
	}
	if p.Vibe == "" {
		missing = append(missing, "vibe")
	}
	return missing
}

// Ready reports whether enough plan context has been gathered.
func (p *PlanMetadata) Ready() bool {
	return len(p.MissingFields()) == 0
}

// QueryMetadata records how a turn's query was processed upstream.
type QueryMetadata struct {
	ModelUsed        string `json:"model_used,omitempty"`
	ModelProvider    string `json:"model_provider,omitempty"`
	ProcessingTimeMs int64  `json:"processing_time_ms,omitempty"`
	ToolCalls        int    `json:"tool_calls,omitempty"`
	ReasoningSteps   int    `json:"reasoning_steps,omitempty"`
}

// Metadata is a tagged union of the known metadata shapes plus a generic
// fallback bag. Exactly the variant named by Kind is populated; the JSON
// form always round-trips.
type Metadata struct {
	Kind  MetadataKind
	Plan  *PlanMetadata
	Query *QueryMetadata
	Extra map[string]any
}

// PlanOf wraps plan metadata into the union.
func PlanOf(p PlanMetadata) Metadata {
	return Metadata{Kind: MetadataPlan, Plan: &p}
}

// QueryOf wraps query-processing metadata into the union.
func QueryOf(q QueryMetadata) Metadata {
	return Metadata{Kind: MetadataQuery, Query: &q}
}

// ExtraOf wraps a free-form bag into the union.
func ExtraOf(extra map[string]any) Metadata {
	return Metadata{Kind: MetadataExtra, Extra: extra}
}

type metadataEnvelope struct {
	Kind  MetadataKind   `json:"kind"`
	Plan  *PlanMetadata  `json:"plan,omitempty"`
	Query *QueryMetadata `json:"query,omitempty"`
	Extra map[string]any `json:"extra,omitempty"`
}

// MarshalJSON encodes the union as {"kind": ..., <variant>: ...}.
func (m Metadata) MarshalJSON() ([]byte, error) {
	env := metadataEnvelope{Kind: m.Kind}
	if env.Kind == "" {
		env.Kind = MetadataNone
	}

	switch env.Kind {
	case MetadataNone:
	case MetadataPlan:
		env.Plan = m.Plan
	case MetadataQuery:
		env.Query = m.Query
	case MetadataExtra:
		env.Extra = m.Extra
	default:
		return nil, fmt.Errorf("unknown metadata kind %q", env.Kind)
	}

	return json.Marshal(env)
}

// UnmarshalJSON decodes the union. Unknown kinds are preserved as extra bags
// so that decoding is total over anything a newer producer may have written.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*m = Metadata{Kind: MetadataNone}
		return nil
	}

	var env metadataEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode metadata: %w", err)
	}

	switch env.Kind {
	case "", MetadataNone:
		*m = Metadata{Kind: MetadataNone}
	case MetadataPlan:
		*m = Metadata{Kind: MetadataPlan, Plan: env.Plan}
	case MetadataQuery:
		*m = Metadata{Kind: MetadataQuery, Query: env.Query}
	default:
		*m = Metadata{Kind: MetadataExtra, Extra: env.Extra}
	}

	return nil
}
