package conversation_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aupherehq/recall/pkg/conversation"
)

var _ = Describe("Metadata", func() {
	roundTrip := func(m conversation.Metadata) conversation.Metadata {
		payload, err := json.Marshal(m)
		Expect(err).NotTo(HaveOccurred())

		var decoded conversation.Metadata
		Expect(json.Unmarshal(payload, &decoded)).To(Succeed())
		return decoded
	}

	It("treats the zero value as the none kind", func() {
		payload, err := json.Marshal(conversation.Metadata{})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(payload)).To(Equal(`{"kind":"none"}`))
	})

	It("decodes null as none", func() {
		var decoded conversation.Metadata
		Expect(json.Unmarshal([]byte("null"), &decoded)).To(Succeed())
		Expect(decoded.Kind).To(Equal(conversation.MetadataNone))
	})

	It("round-trips plan metadata", func() {
		decoded := roundTrip(conversation.PlanOf(conversation.PlanMetadata{
			Duration:   "weekend",
			NumPeople:  2,
			Cities:     []string{"Zaragoza"},
			PlaceTypes: []string{"restaurant", "bar"},
			Vibe:       "relaxed",
		}))

		Expect(decoded.Kind).To(Equal(conversation.MetadataPlan))
		Expect(decoded.Plan).NotTo(BeNil())
		Expect(decoded.Plan.Cities).To(Equal([]string{"Zaragoza"}))
		Expect(decoded.Plan.NumPeople).To(Equal(2))
	})

	It("round-trips query metadata", func() {
		decoded := roundTrip(conversation.QueryOf(conversation.QueryMetadata{
			ModelUsed:        "gpt-4o-mini",
			ModelProvider:    "openai",
			ProcessingTimeMs: 840,
			ToolCalls:        2,
		}))

		Expect(decoded.Kind).To(Equal(conversation.MetadataQuery))
		Expect(decoded.Query).NotTo(BeNil())
		Expect(decoded.Query.ToolCalls).To(Equal(2))
	})

	It("round-trips extra bags", func() {
		decoded := roundTrip(conversation.ExtraOf(map[string]any{"source": "ab-test"}))

		Expect(decoded.Kind).To(Equal(conversation.MetadataExtra))
		Expect(decoded.Extra).To(HaveKeyWithValue("source", "ab-test"))
	})

	It("decodes unknown kinds as extra instead of failing", func() {
		var decoded conversation.Metadata
		Expect(json.Unmarshal([]byte(`{"kind":"hologram","extra":{"a":1}}`), &decoded)).To(Succeed())
		Expect(decoded.Kind).To(Equal(conversation.MetadataExtra))
	})

	It("rejects marshaling an invented kind", func() {
		_, err := json.Marshal(conversation.Metadata{Kind: "hologram"})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("PlanMetadata", func() {
	It("lists every missing required field in order", func() {
		plan := conversation.PlanMetadata{}
		Expect(plan.MissingFields()).To(Equal([]string{
			"duration", "num_people", "cities", "place_types", "vibe",
		}))
		Expect(plan.Ready()).To(BeFalse())
	})

	It("is ready once the required fields are set", func() {
		plan := conversation.PlanMetadata{
			Duration:   "3 días",
			NumPeople:  4,
			Cities:     []string{"Madrid", "Zaragoza"},
			PlaceTypes: []string{"museum"},
			Vibe:       "cultural",
		}
		Expect(plan.MissingFields()).To(BeEmpty())
		Expect(plan.Ready()).To(BeTrue())
	})
})
