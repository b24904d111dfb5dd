package inmemory_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aupherehq/recall/pkg/conversation"
	"github.com/aupherehq/recall/pkg/storage"
	"github.com/aupherehq/recall/pkg/storage/inmemory"
)

var _ = Describe("Driver", func() {
	var (
		ctx    context.Context
		driver *inmemory.Driver
		base   time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
		base = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	})

	appendAt := func(sessionID, userID, query string, at time.Time) string {
		id, err := driver.Append(ctx, &conversation.Turn{
			SessionID: sessionID,
			UserID:    userID,
			Query:     query,
			Response:  "vale",
			CreatedAt: at,
		})
		Expect(err).NotTo(HaveOccurred())
		return id
	}

	Describe("Append", func() {
		It("assigns an id and timestamp when unset", func() {
			turn := &conversation.Turn{SessionID: "sess-1", UserID: "user-1", Query: "hola"}
			id, err := driver.Append(ctx, turn)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).NotTo(BeEmpty())
			Expect(turn.ID).To(Equal(id))
			Expect(turn.CreatedAt.IsZero()).To(BeFalse())
		})

		It("keeps a caller-provided id", func() {
			turn := &conversation.Turn{ID: "turn-7", SessionID: "sess-1", UserID: "user-1", Query: "hola"}
			id, err := driver.Append(ctx, turn)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("turn-7"))
		})

		It("rejects an invalid turn with a storage error", func() {
			_, err := driver.Append(ctx, &conversation.Turn{SessionID: "sess-1"})
			Expect(err).To(HaveOccurred())

			var serr *storage.StorageError
			Expect(errors.As(err, &serr)).To(BeTrue())
			Expect(serr.Op).To(Equal("append"))
		})

		It("stores a copy, detached from the caller's turn", func() {
			turn := &conversation.Turn{SessionID: "sess-1", UserID: "user-1", Query: "hola"}
			_, err := driver.Append(ctx, turn)
			Expect(err).NotTo(HaveOccurred())

			turn.Query = "mutated"

			turns, err := driver.RecentForSession(ctx, "sess-1", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns[0].Query).To(Equal("hola"))
		})
	})

	Describe("RecentForSession", func() {
		It("returns turns oldest-first", func() {
			appendAt("sess-1", "user-1", "primera", base)
			appendAt("sess-1", "user-1", "tercera", base.Add(2*time.Minute))
			appendAt("sess-1", "user-1", "segunda", base.Add(time.Minute))

			turns, err := driver.RecentForSession(ctx, "sess-1", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(3))
			Expect(turns[0].Query).To(Equal("primera"))
			Expect(turns[1].Query).To(Equal("segunda"))
			Expect(turns[2].Query).To(Equal("tercera"))
		})

		It("keeps the newest turns when over the limit", func() {
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

			turns, err := driver.RecentForSession(ctx, "sess-1", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(1))
			Expect(turns[0].Query).To(Equal("aquí"))
		})

		It("returns nothing for an unknown session", func() {
			turns, err := driver.RecentForSession(ctx, "sess-none", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(BeEmpty())
		})
	})

	Describe("RecentForUser", func() {
		It("returns turns newest-first across sessions", func() {
			appendAt("sess-1", "user-1", "primera", base)
			appendAt("sess-2", "user-1", "segunda", base.Add(time.Minute))
			appendAt("sess-1", "user-2", "ajena", base.Add(2*time.Minute))

			turns, err := driver.RecentForUser(ctx, "user-1", 10, time.Time{})
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].Query).To(Equal("segunda"))
			Expect(turns[1].Query).To(Equal("primera"))
		})

		It("filters by the since bound", func() {
			appendAt("sess-1", "user-1", "vieja", base)
			appendAt("sess-1", "user-1", "nueva", base.Add(time.Hour))

			turns, err := driver.RecentForUser(ctx, "user-1", 10, base.Add(30*time.Minute))
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(1))
			Expect(turns[0].Query).To(Equal("nueva"))
		})

		It("truncates to the limit, keeping the newest", func() {
			for i := 1; i <= 4; i++ {
				appendAt("sess-1", "user-1", fmt.Sprintf("pregunta %d", i), base.Add(time.Duration(i)*time.Minute))
			}

			turns, err := driver.RecentForUser(ctx, "user-1", 2, time.Time{})
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].Query).To(Equal("pregunta 4"))
			Expect(turns[1].Query).To(Equal("pregunta 3"))
		})
	})

	Describe("Sessions", func() {
		It("groups turns into sessions, most recently active first", func() {
			appendAt("sess-1", "user-1", "a", base)
			appendAt("sess-1", "user-1", "b", base.Add(time.Minute))
			appendAt("sess-2", "user-1", "c", base.Add(2*time.Minute))

			sessions, err := driver.Sessions(ctx, "user-1", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions).To(HaveLen(2))

			Expect(sessions[0].SessionID).To(Equal("sess-2"))
			Expect(sessions[0].TurnCount).To(Equal(1))
			Expect(sessions[0].LastTurnAt).To(Equal(base.Add(2 * time.Minute)))

			Expect(sessions[1].SessionID).To(Equal("sess-1"))
			Expect(sessions[1].TurnCount).To(Equal(2))
		})

		It("honors the limit", func() {
			appendAt("sess-1", "user-1", "a", base)
			appendAt("sess-2", "user-1", "b", base.Add(time.Minute))

			sessions, err := driver.Sessions(ctx, "user-1", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions).To(HaveLen(1))
			Expect(sessions[0].SessionID).To(Equal("sess-2"))
		})
	})
})
