package memctx_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aupherehq/recall/pkg/conversation"
	"github.com/aupherehq/recall/pkg/memctx"
)

var _ = Describe("RuleSummarizer", func() {
	var summarizer memctx.RuleSummarizer

	It("returns an empty digest for no turns", func() {
		Expect(summarizer.Summarize(nil)).To(Equal(""))
	})

	It("counts the turns", func() {
		turns := []*conversation.Turn{{}, {}, {}}
		Expect(summarizer.Summarize(turns)).To(Equal("Conversación previa: 3 mensajes anteriores."))
	})

	It("ranks labels by frequency, ties alphabetical", func() {
		turns := []*conversation.Turn{
			{Label: "search"},
			{Label: "plan"},
			{Label: "search"},
			{Label: "chat"},
			{Label: "plan"},
		}
		Expect(summarizer.Summarize(turns)).To(Equal(
			"Conversación previa: 5 mensajes anteriores. Temas: plan: 2, search: 2, chat: 1.",
		))
	})

	It("skips unlabeled turns in the topic breakdown", func() {
		turns := []*conversation.Turn{
			{Label: "search"},
			{},
		}
		Expect(summarizer.Summarize(turns)).To(Equal(
			"Conversación previa: 2 mensajes anteriores. Temas: search: 1.",
		))
	})

	It("totals entities across turns", func() {
		turns := []*conversation.Turn{
			turnWithEntities("Bar X", "Bar Y"),
			turnWithEntities("Plaza Mayor"),
			{},
		}
		Expect(summarizer.Summarize(turns)).To(Equal(
			"Conversación previa: 3 mensajes anteriores. Se discutieron 3 lugares en total.",
		))
	})

	It("is deterministic across calls", func() {
		turns := []*conversation.Turn{
			{Label: "search", Entities: []conversation.Entity{{Name: "Bar X"}}},
			{Label: "plan"},
		}
		first := summarizer.Summarize(turns)
		Expect(summarizer.Summarize(turns)).To(Equal(first))
	})
})
