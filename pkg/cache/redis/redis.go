// Package redis provides a Redis-backed cache driver.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aupherehq/recall/pkg/cache"
)

const connectTimeout = 5 * time.Second

// Config holds connection settings for the Redis cache driver.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Driver implements cache.Driver on Redis.
type Driver struct {
	client *goredis.Client
}

// NewDriver connects to Redis and verifies the connection with a ping.
func NewDriver(ctx context.Context, config Config) (*Driver, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", config.Addr, err)
	}

	return &Driver{client: client}, nil
}

// Get returns the payload for key. A missing key is a miss, not an error.
func (d *Driver) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := d.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &cache.Error{Op: "get", Err: err}
	}
	return payload, true, nil
}

// Set stores the payload under key with the given TTL.
func (d *Driver) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := d.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return &cache.Error{Op: "set", Err: err}
	}
	return nil
}

// Invalidate drops the entry for key. Missing keys are a no-op.
func (d *Driver) Invalidate(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, key).Err(); err != nil {
		return &cache.Error{Op: "invalidate", Err: err}
	}
	return nil
}

// Close closes the underlying client.
func (d *Driver) Close() error {
	return d.client.Close()
}
