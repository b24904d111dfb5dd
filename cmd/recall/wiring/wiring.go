// Package wiring builds the shared dependency graph for recall commands:
// logger, config, turn store, cache driver, and event publisher, selected
// from configuration.
package wiring

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aupherehq/recall/pkg/cache"
	cachelocal "github.com/aupherehq/recall/pkg/cache/local"
	cacheredis "github.com/aupherehq/recall/pkg/cache/redis"
	"github.com/aupherehq/recall/pkg/config"
	"github.com/aupherehq/recall/pkg/eventstream"
	eskafka "github.com/aupherehq/recall/pkg/eventstream/kafka"
	"github.com/aupherehq/recall/pkg/eventstream/nop"
	"github.com/aupherehq/recall/pkg/logger"
	"github.com/aupherehq/recall/pkg/storage"
	"github.com/aupherehq/recall/pkg/storage/inmemory"
	"github.com/aupherehq/recall/pkg/storage/postgres"
	"github.com/aupherehq/recall/pkg/storage/sqlite"
)

// Deps is the assembled dependency set for a command invocation.
type Deps struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     storage.TurnStore
	Cache     cache.Driver
	Publisher eventstream.Publisher

	logFile *os.File
}

// Build reads flags and config, then opens every configured backend.
// Callers must Close the result.
func Build(ctx context.Context, cmd *cobra.Command) (*Deps, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	configDir, _ := cmd.Flags().GetString("config-dir")
	logFilePath, _ := cmd.Flags().GetString("log-file")

	deps := &Deps{}

	log := logger.New(logger.WithPretty(true), logger.WithDebug(debug))
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		deps.logFile = f
		fileLog := logger.New(logger.WithJSON(true), logger.WithDebug(debug), logger.WithWriter(f))
		log = logger.Multi(log, fileLog)
	}
	deps.Logger = log

	v, err := config.InitViper(configDir)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Config = config.FromViper(v)

	deps.Store, err = openStore(ctx, deps.Config)
	if err != nil {
		deps.Close()
		return nil, err
	}

	deps.Cache, err = openCache(ctx, deps.Config, log)
	if err != nil {
		deps.Close()
		return nil, err
	}

	deps.Publisher, err = openPublisher(deps.Config)
	if err != nil {
		deps.Close()
		return nil, err
	}

	return deps, nil
}

// Close releases every open backend.
func (d *Deps) Close() {
	if d.Publisher != nil {
		_ = d.Publisher.Close()
	}
	if d.Cache != nil {
		_ = d.Cache.Close()
	}
	if d.Store != nil {
		_ = d.Store.Close()
	}
	if d.logFile != nil {
		_ = d.logFile.Close()
	}
}

func openStore(ctx context.Context, cfg *config.Config) (storage.TurnStore, error) {
	switch cfg.Storage.Driver {
	case "sqlite", "":
		return sqlite.NewDriver(cfg.Storage.SQLitePath)
	case "postgres":
		return postgres.NewDriver(ctx, cfg.Storage.PostgresURL)
	case "memory":
		return inmemory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openCache(ctx context.Context, cfg *config.Config, log *slog.Logger) (cache.Driver, error) {
	switch cfg.Cache.Driver {
	case "local", "":
		return cachelocal.NewDriver(cachelocal.Config{MaxEntries: cfg.Cache.MaxEntries}), nil
	case "redis":
		driver, err := cacheredis.NewDriver(ctx, cacheredis.Config{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			// Cache unavailability degrades to always-miss rather than
			// blocking the command.
			log.Warn("redis unavailable, running uncached", "error", err)
			return nil, nil
		}
		return driver, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}

func openPublisher(cfg *config.Config) (eventstream.Publisher, error) {
	if !cfg.Events.Enabled {
		return nop.NewPublisher(), nil
	}
	return eskafka.NewPublisher(eskafka.Config{
		Brokers: cfg.Events.Brokers,
		Topic:   cfg.Events.Topic,
	})
}
