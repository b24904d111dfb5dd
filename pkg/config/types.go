// Package config holds the persistent recall configuration: storage and
// cache driver selection, memory tuning knobs, and event stream settings.
// The on-disk form is config.toml in the .recall/ directory; environment
// variables with the RECALL_ prefix override file values.
package config

import (
	"time"

	"github.com/aupherehq/recall/pkg/memctx"
)

// Config is the full recall configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Cache   CacheConfig   `toml:"cache"`
	Memory  MemoryConfig  `toml:"memory"`
	Events  EventsConfig  `toml:"events"`
}

// StorageConfig selects and configures the turn store driver.
type StorageConfig struct {
	// Driver is one of "sqlite", "postgres", "memory".
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresURL string `toml:"postgres_url,omitempty"`
}

// CacheConfig selects and configures the snapshot cache driver.
type CacheConfig struct {
	// Driver is one of "local", "redis", "none".
	Driver        string `toml:"driver,omitempty"`
	RedisAddr     string `toml:"redis_addr,omitempty"`
	RedisPassword string `toml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db,omitempty"`
	TTLSeconds    int    `toml:"ttl_seconds,omitempty"`
	MaxEntries    int    `toml:"max_entries,omitempty"`
}

// MemoryConfig holds the context assembler's tuning knobs.
type MemoryConfig struct {
	MaxShortTermTurns    int     `toml:"max_short_term_turns,omitempty"`
	MaxLongTermTurns     int     `toml:"max_long_term_turns,omitempty"`
	MaxTokens            int     `toml:"max_tokens,omitempty"`
	CompressionThreshold float64 `toml:"compression_threshold,omitempty"`
	EntityScanTurns      int     `toml:"entity_scan_turns,omitempty"`
	MaxEntitiesPerTurn   int     `toml:"max_entities_per_turn,omitempty"`
}

// EventsConfig configures the turn event stream.
type EventsConfig struct {
	Enabled bool     `toml:"enabled,omitempty"`
	Brokers []string `toml:"brokers,omitempty"`
	Topic   string   `toml:"topic,omitempty"`
}

// MemctxConfig maps the memory section onto the assembler's config,
// folding the cache TTL in from the cache section.
func (c *Config) MemctxConfig() memctx.Config {
	return memctx.Config{
		MaxShortTermTurns:    c.Memory.MaxShortTermTurns,
		MaxLongTermTurns:     c.Memory.MaxLongTermTurns,
		MaxTokens:            c.Memory.MaxTokens,
		CompressionThreshold: c.Memory.CompressionThreshold,
		EntityScanTurns:      c.Memory.EntityScanTurns,
		MaxEntitiesPerTurn:   c.Memory.MaxEntitiesPerTurn,
		CacheTTL:             time.Duration(c.Cache.TTLSeconds) * time.Second,
	}
}
