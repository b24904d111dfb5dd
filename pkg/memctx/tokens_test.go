package memctx_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aupherehq/recall/pkg/conversation"
	"github.com/aupherehq/recall/pkg/memctx"
)

var _ = Describe("Token estimation", func() {
	Describe("Estimate", func() {
		It("returns zero for empty text", func() {
			Expect(memctx.Estimate("")).To(Equal(0))
		})

		It("divides character count by four, rounding down", func() {
			Expect(memctx.Estimate("abcd")).To(Equal(1))
			Expect(memctx.Estimate("abcdefg")).To(Equal(1))
			Expect(memctx.Estimate("abcdefgh")).To(Equal(2))
		})

		It("is deterministic for identical input", func() {
			text := strings.Repeat("hola qué tal ", 50)
			Expect(memctx.Estimate(text)).To(Equal(memctx.Estimate(text)))
		})

		It("is monotonic in input length", func() {
			base := "dónde puedo cenar tapas esta noche en el centro"
			previous := 0
			for i := 0; i <= len(base); i++ {
				estimate := memctx.Estimate(base[:i])
				Expect(estimate).To(BeNumerically(">=", previous))
				previous = estimate
			}
		})
	})

	Describe("EstimateTurns", func() {
		It("sums query and response estimates", func() {
			turns := []*conversation.Turn{
				{Query: "abcd", Response: "abcdefgh"},
				{Query: "abcdefgh", Response: "abcd"},
			}
			Expect(memctx.EstimateTurns(turns)).To(Equal(6))
		})

		It("returns zero for no turns", func() {
			Expect(memctx.EstimateTurns(nil)).To(Equal(0))
		})
	})
})
