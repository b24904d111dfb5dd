package config

const (
	defaultStorageDriver = "sqlite"
	defaultSQLitePath    = "recall.db"

	defaultCacheDriver = "local"
	defaultRedisAddr   = "localhost:6379"
	defaultCacheTTL    = 300
	defaultMaxEntries  = 1024

	defaultEventsTopic = "recall.turns"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:     defaultStorageDriver,
			SQLitePath: defaultSQLitePath,
		},
		Cache: CacheConfig{
			Driver:     defaultCacheDriver,
			RedisAddr:  defaultRedisAddr,
			TTLSeconds: defaultCacheTTL,
			MaxEntries: defaultMaxEntries,
		},
		Memory: MemoryConfig{
			MaxShortTermTurns:    10,
			MaxLongTermTurns:     50,
			MaxTokens:            4000,
			CompressionThreshold: 0.8,
			EntityScanTurns:      3,
			MaxEntitiesPerTurn:   10,
		},
		Events: EventsConfig{
			Enabled: false,
			Topic:   defaultEventsTopic,
		},
	}
}
