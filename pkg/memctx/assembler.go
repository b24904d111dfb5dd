// Package memctx assembles bounded conversation context snapshots.
//
// Given a user, a session, and the query being answered, the Assembler
// combines recent verbatim turns, a digest of older turns, and entity
// references for ordinal resolution into one immutable Snapshot, under a
// token budget, with a short-TTL read-through cache in front of the store.
package memctx

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aupherehq/recall/pkg/cache"
	"github.com/aupherehq/recall/pkg/conversation"
	"github.com/aupherehq/recall/pkg/storage"
)

// DefaultLanguage is assumed when a request doesn't carry one.
const DefaultLanguage = "es"

// minCompressedTurns is the floor the compression step never cuts below.
const minCompressedTurns = 3

// Config holds the assembler's tuning knobs. Zero fields take defaults.
type Config struct {
	// MaxShortTermTurns bounds the recent window kept in full detail.
	MaxShortTermTurns int

	// MaxLongTermTurns bounds how many turns are loaded per request;
	// turns beyond the recent window feed the summary.
	MaxLongTermTurns int

	// MaxTokens is the context token budget.
	MaxTokens int

	// CompressionThreshold is the fraction of MaxTokens at which the
	// recent window is compressed.
	CompressionThreshold float64

	// EntityScanTurns is how many of the most recent turns the entity
	// extractor scans.
	EntityScanTurns int

	// MaxEntitiesPerTurn bounds extracted entities per turn.
	MaxEntitiesPerTurn int

	// CacheTTL is how long assembled projections stay cached.
	CacheTTL time.Duration
}

// DefaultConfig returns the assembler defaults.
func DefaultConfig() Config {
	return Config{
		MaxShortTermTurns:    10,
		MaxLongTermTurns:     50,
		MaxTokens:            4000,
		CompressionThreshold: 0.8,
		EntityScanTurns:      3,
		MaxEntitiesPerTurn:   conversation.MaxEntitiesPerTurn,
		CacheTTL:             5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxShortTermTurns <= 0 {
		c.MaxShortTermTurns = d.MaxShortTermTurns
	}
	if c.MaxLongTermTurns <= 0 {
		c.MaxLongTermTurns = d.MaxLongTermTurns
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.CompressionThreshold <= 0 || c.CompressionThreshold > 1 {
		c.CompressionThreshold = d.CompressionThreshold
	}
	if c.EntityScanTurns <= 0 {
		c.EntityScanTurns = d.EntityScanTurns
	}
	if c.MaxEntitiesPerTurn <= 0 {
		c.MaxEntitiesPerTurn = d.MaxEntitiesPerTurn
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	return c
}

// Options configures a new Assembler.
type Options struct {
	// Store is the turn store. Required.
	Store storage.TurnStore

	// Cache is the snapshot cache. Nil disables caching.
	Cache cache.Driver

	// Summarizer digests older turns. Nil selects RuleSummarizer.
	Summarizer Summarizer

	// Config holds tuning knobs; zero fields take defaults.
	Config Config

	// Logger is the structured logger. Nil selects slog.Default().
	Logger *slog.Logger
}

// Assembler builds one Snapshot per request.
//
// Concurrent requests for different sessions are independent. Two
// concurrent requests for the same session can race with a turn append:
// at most one stale cached snapshot may be served inside the cache TTL.
// That weak-consistency window is accepted; see the cache package doc for
// the invalidation contract.
type Assembler struct {
	store      storage.TurnStore
	cache      cache.Driver
	summarizer Summarizer
	config     Config
	logger     *slog.Logger
}

// NewAssembler creates an Assembler from the given options.
func NewAssembler(opts Options) (*Assembler, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("assembler requires a turn store")
	}

	summarizer := opts.Summarizer
	if summarizer == nil {
		summarizer = RuleSummarizer{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Assembler{
		store:      opts.Store,
		cache:      opts.Cache,
		summarizer: summarizer,
		config:     opts.Config.withDefaults(),
		logger:     logger,
	}, nil
}

// Assemble produces the context snapshot for one request.
//
// A storage failure is fatal: without history there is no meaningful
// context to return. Cache failures are logged and degraded: a failed read
// becomes a miss, a failed write skips caching. The assembler performs no
// turn writes, so an aborted request leaves no partial state.
func (a *Assembler) Assemble(ctx context.Context, userID, sessionID, query, language string) (*Snapshot, error) {
	if sessionID == "" {
		return nil, &ValidationError{Field: "session_id", Reason: "must not be empty"}
	}
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "must not be empty"}
	}
	if query == "" {
		return nil, &ValidationError{Field: "query", Reason: "must not be empty"}
	}
	if language == "" {
		language = DefaultLanguage
	}

	if snapshot := a.fromCache(ctx, sessionID, query, language); snapshot != nil {
		a.logger.Debug("context served from cache",
			"session_id", sessionID,
			"recent_turns", len(snapshot.RecentTurns),
		)
		return snapshot, nil
	}

	// Load. A single store read feeds every memory level.
	all, err := a.store.RecentForSession(ctx, sessionID, a.config.MaxLongTermTurns)
	if err != nil {
		return nil, fmt.Errorf("load session history: %w", err)
	}

	// Split into the recent window and the older remainder.
	recent := all
	var older []*conversation.Turn
	if len(all) > a.config.MaxShortTermTurns {
		older = all[:len(all)-a.config.MaxShortTermTurns]
		recent = all[len(all)-a.config.MaxShortTermTurns:]
	}

	refs := ExtractEntityRefs(recent, a.config.EntityScanTurns, a.config.MaxEntitiesPerTurn)

	summary := ""
	if len(older) > 0 {
		summary = a.summarizer.Summarize(older)
	}

	// Budget. Compress the recent window when the estimate crosses the
	// threshold; the store keeps the full history either way.
	estimate := EstimateTurns(recent) + Estimate(summary)
	threshold := float64(a.config.MaxTokens) * a.config.CompressionThreshold
	if float64(estimate) > threshold {
		keep := a.config.MaxShortTermTurns / 2
		if keep < minCompressedTurns {
			keep = minCompressedTurns
		}
		if len(recent) > keep {
			recent = recent[len(recent)-keep:]
		}
		compressed := EstimateTurns(recent) + Estimate(summary)

		a.logger.Info("context window compressed",
			"session_id", sessionID,
			"kept_turns", len(recent),
			"estimated_tokens", compressed,
			"previous_estimate", estimate,
		)
		estimate = compressed
	}

	snapshot := &Snapshot{
		CurrentQuery:    query,
		CurrentLanguage: language,
		SessionID:       sessionID,
		UserID:          userID,
		RecentTurns:     recent,
		Summary:         summary,
		EntityRefs:      refs,
		TotalTurns:      len(all),
		EstimatedTokens: estimate,
	}

	a.toCache(ctx, sessionID, snapshot)

	a.logger.Debug("context assembled",
		"session_id", sessionID,
		"total_turns", snapshot.TotalTurns,
		"recent_turns", len(snapshot.RecentTurns),
		"estimated_tokens", snapshot.EstimatedTokens,
	)

	return snapshot, nil
}

// fromCache attempts the cache-hit path. Any failure degrades to a miss.
func (a *Assembler) fromCache(ctx context.Context, sessionID, query, language string) *Snapshot {
	if a.cache == nil {
		return nil
	}

	payload, ok, err := a.cache.Get(ctx, cache.SessionKey(sessionID))
	if err != nil {
		a.logger.Warn("cache read failed, treating as miss",
			"session_id", sessionID,
			"error", err,
		)
		return nil
	}
	if !ok {
		return nil
	}

	p, err := decodeProjection(payload)
	if err != nil {
		a.logger.Warn("cached projection unreadable, treating as miss",
			"session_id", sessionID,
			"error", err,
		)
		return nil
	}

	return snapshotFromProjection(p, query, language)
}

// toCache writes the snapshot's projection. Failures are logged and the
// request proceeds uncached.
func (a *Assembler) toCache(ctx context.Context, sessionID string, snapshot *Snapshot) {
	if a.cache == nil {
		return
	}

	payload, err := encodeProjection(snapshot.toProjection())
	if err != nil {
		a.logger.Warn("projection encode failed, skipping cache",
			"session_id", sessionID,
			"error", err,
		)
		return
	}

	if err := a.cache.Set(ctx, cache.SessionKey(sessionID), payload, a.config.CacheTTL); err != nil {
		a.logger.Warn("cache write failed, skipping cache",
			"session_id", sessionID,
			"error", err,
		)
	}
}
