package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aupherehq/recall/pkg/conversation"
	"github.com/aupherehq/recall/pkg/storage"
	"github.com/aupherehq/recall/pkg/storage/sqlite"
)

var _ = Describe("Driver", func() {
	var (
		ctx    context.Context
		driver *sqlite.Driver
		base   time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		base = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

		var err error
		driver, err = sqlite.NewDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
		}
	})

	appendAt := func(sessionID, userID, query string, at time.Time) string {
		id, err := driver.Append(ctx, &conversation.Turn{
			SessionID: sessionID,
			UserID:    userID,
			Query:     query,
			Response:  "vale",
			Label:     "search",
			CreatedAt: at,
		})
		Expect(err).NotTo(HaveOccurred())
		return id
	}

	It("opens a database file on disk", func() {
		path := filepath.Join(GinkgoT().TempDir(), "recall.db")
		fileDriver, err := sqlite.NewDriver(path)
		Expect(err).NotTo(HaveOccurred())
		defer fileDriver.Close()

		_, err = fileDriver.Append(ctx, &conversation.Turn{
			SessionID: "sess-1",
			UserID:    "user-1",
			Query:     "hola",
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Append", func() {
		It("assigns an id and timestamp when unset", func() {
			turn := &conversation.Turn{SessionID: "sess-1", UserID: "user-1", Query: "hola"}
			id, err := driver.Append(ctx, turn)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).NotTo(BeEmpty())
			Expect(turn.CreatedAt.IsZero()).To(BeFalse())
		})

		It("rejects an invalid turn with a storage error", func() {
			_, err := driver.Append(ctx, &conversation.Turn{UserID: "user-1", Query: "hola"})
			Expect(err).To(HaveOccurred())

			var serr *storage.StorageError
			Expect(errors.As(err, &serr)).To(BeTrue())
		})

		It("persists entities and metadata", func() {
			turn := &conversation.Turn{
				SessionID:  "sess-1",
				UserID:     "user-1",
				Query:      "plan de finde",
				Response:   "voy anotando",
				Confidence: 0.85,
				Entities: []conversation.Entity{
					{Name: "Bodegas Almau", Attrs: map[string]any{"type": "bar"}},
				},
				Metadata: conversation.PlanOf(conversation.PlanMetadata{
					Duration: "weekend",
					Cities:   []string{"Zaragoza"},
				}),
				CreatedAt: base,
			}
			_, err := driver.Append(ctx, turn)
			Expect(err).NotTo(HaveOccurred())

			turns, err := driver.RecentForSession(ctx, "sess-1", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(1))

			loaded := turns[0]
			Expect(loaded.Confidence).To(BeNumerically("~", 0.85, 1e-9))
			Expect(loaded.Entities).To(HaveLen(1))
			Expect(loaded.Entities[0].Name).To(Equal("Bodegas Almau"))
			Expect(loaded.Entities[0].Attrs).To(HaveKeyWithValue("type", "bar"))
			Expect(loaded.Metadata.Kind).To(Equal(conversation.MetadataPlan))
			Expect(loaded.Metadata.Plan.Cities).To(Equal([]string{"Zaragoza"}))
		})
	})

	Describe("RecentForSession", func() {
		It("returns turns oldest-first, newest kept when over the limit", func() {
			for i := 1; i <= 5; i++ {
				appendAt("sess-1", "user-1", fmt.Sprintf("pregunta %d", i), base.Add(time.Duration(i)*time.Minute))
			}

			turns, err := driver.RecentForSession(ctx, "sess-1", 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(3))
			Expect(turns[0].Query).To(Equal("pregunta 3"))
			Expect(turns[2].Query).To(Equal("pregunta 5"))
		})

		It("isolates sessions", func() {
			appendAt("sess-1", "user-1", "aquí", base)
			appendAt("sess-2", "user-1", "allá", base.Add(time.Minute))

			turns, err := driver.RecentForSession(ctx, "sess-2", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(1))
			Expect(turns[0].Query).To(Equal("allá"))
		})

		It("returns nothing for an unknown session", func() {
			turns, err := driver.RecentForSession(ctx, "sess-none", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(BeEmpty())
		})
	})

	Describe("RecentForUser", func() {
		It("returns turns newest-first across sessions, bounded by since", func() {
			appendAt("sess-1", "user-1", "vieja", base)
			appendAt("sess-2", "user-1", "media", base.Add(time.Hour))
			appendAt("sess-2", "user-1", "nueva", base.Add(2*time.Hour))
			appendAt("sess-3", "user-2", "ajena", base.Add(3*time.Hour))

			turns, err := driver.RecentForUser(ctx, "user-1", 10, base.Add(30*time.Minute))
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].Query).To(Equal("nueva"))
			Expect(turns[1].Query).To(Equal("media"))
		})
	})

	Describe("Sessions", func() {
		It("aggregates per-session turn counts, most recently active first", func() {
			appendAt("sess-1", "user-1", "a", base)
			appendAt("sess-1", "user-1", "b", base.Add(time.Minute))
			appendAt("sess-2", "user-1", "c", base.Add(2*time.Minute))

			sessions, err := driver.Sessions(ctx, "user-1", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions).To(HaveLen(2))
			Expect(sessions[0].SessionID).To(Equal("sess-2"))
			Expect(sessions[1].SessionID).To(Equal("sess-1"))
			Expect(sessions[1].TurnCount).To(Equal(2))
		})
	})
})
