package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file in
// configDir (or the default .recall/ directory when empty), and binds
// environment variables with the RECALL_ prefix.
//
// Config precedence (highest to lowest):
//  1. Environment variables (RECALL_STORAGE_DRIVER, RECALL_CACHE_REDIS_ADDR, ...)
//  2. config.toml file values
//  3. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	target, err := resolveDir(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("RECALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of
// truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	// Storage
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_url", d.Storage.PostgresURL)

	// Cache
	v.SetDefault("cache.driver", d.Cache.Driver)
	v.SetDefault("cache.redis_addr", d.Cache.RedisAddr)
	v.SetDefault("cache.redis_password", d.Cache.RedisPassword)
	v.SetDefault("cache.redis_db", d.Cache.RedisDB)
	v.SetDefault("cache.ttl_seconds", d.Cache.TTLSeconds)
	v.SetDefault("cache.max_entries", d.Cache.MaxEntries)

	// Memory
	v.SetDefault("memory.max_short_term_turns", d.Memory.MaxShortTermTurns)
	v.SetDefault("memory.max_long_term_turns", d.Memory.MaxLongTermTurns)
	v.SetDefault("memory.max_tokens", d.Memory.MaxTokens)
	v.SetDefault("memory.compression_threshold", d.Memory.CompressionThreshold)
	v.SetDefault("memory.entity_scan_turns", d.Memory.EntityScanTurns)
	v.SetDefault("memory.max_entities_per_turn", d.Memory.MaxEntitiesPerTurn)

	// Events
	v.SetDefault("events.enabled", d.Events.Enabled)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)
}

// FromViper reads a Config out of the given viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:      v.GetString("storage.driver"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresURL: v.GetString("storage.postgres_url"),
		},
		Cache: CacheConfig{
			Driver:        v.GetString("cache.driver"),
			RedisAddr:     v.GetString("cache.redis_addr"),
			RedisPassword: v.GetString("cache.redis_password"),
			RedisDB:       v.GetInt("cache.redis_db"),
			TTLSeconds:    v.GetInt("cache.ttl_seconds"),
			MaxEntries:    v.GetInt("cache.max_entries"),
		},
		Memory: MemoryConfig{
			MaxShortTermTurns:    v.GetInt("memory.max_short_term_turns"),
			MaxLongTermTurns:     v.GetInt("memory.max_long_term_turns"),
			MaxTokens:            v.GetInt("memory.max_tokens"),
			CompressionThreshold: v.GetFloat64("memory.compression_threshold"),
			EntityScanTurns:      v.GetInt("memory.entity_scan_turns"),
			MaxEntitiesPerTurn:   v.GetInt("memory.max_entities_per_turn"),
		},
		Events: EventsConfig{
			Enabled: v.GetBool("events.enabled"),
			Brokers: v.GetStringSlice("events.brokers"),
			Topic:   v.GetString("events.topic"),
		},
	}
}
