// Package local provides an in-process TTL cache driver.
//
// Entries are bounded: when the map exceeds MaxEntries, expired entries are
// dropped first, then the entries closest to expiry. This replaces the
// unbounded per-process session maps the agent used to carry.
package local

import (
	"context"
	"sync"
	"time"
)

const defaultMaxEntries = 1024

// Config holds configuration for the local cache driver.
type Config struct {
	// MaxEntries bounds the number of live entries. Zero means the
	// default of 1024.
	MaxEntries int
}

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// Driver implements cache.Driver using an in-process map with lazy expiry.
type Driver struct {
	config Config

	mu      sync.RWMutex
	entries map[string]entry
}

// NewDriver creates a local TTL cache.
func NewDriver(config Config) *Driver {
	if config.MaxEntries <= 0 {
		config.MaxEntries = defaultMaxEntries
	}
	return &Driver{
		config:  config,
		entries: make(map[string]entry),
	}
}

// Get returns the payload for key, treating expired entries as misses.
func (d *Driver) Get(_ context.Context, key string) ([]byte, bool, error) {
	d.mu.RLock()
	e, ok := d.entries[key]
	d.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if time.Now().After(e.expiresAt) {
		d.mu.Lock()
		delete(d.entries, key)
		d.mu.Unlock()
		return nil, false, nil
	}

	// Copy so callers can't mutate the cached payload.
	payload := make([]byte, len(e.payload))
	copy(payload, e.payload)

	return payload, true, nil
}

// Set stores the payload under key with the given TTL, evicting as needed
// to stay within the entry bound.
func (d *Driver) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	copied := make([]byte, len(payload))
	copy(copied, payload)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.entries[key]; !exists && len(d.entries) >= d.config.MaxEntries {
		d.evictLocked()
	}

	d.entries[key] = entry{
		payload:   copied,
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}

// Invalidate drops the entry for key.
func (d *Driver) Invalidate(_ context.Context, key string) error {
	d.mu.Lock()
	delete(d.entries, key)
	d.mu.Unlock()
	return nil
}

// Close is a no-op for the local driver.
func (d *Driver) Close() error {
	return nil
}

// evictLocked drops expired entries, and if none were expired, the entry
// closest to expiry. Caller must hold the write lock.
func (d *Driver) evictLocked() {
	now := time.Now()
	before := len(d.entries)

	for key, e := range d.entries {
		if now.After(e.expiresAt) {
			delete(d.entries, key)
		}
	}

	if len(d.entries) < before {
		return
	}

	var oldestKey string
	var oldestAt time.Time
	for key, e := range d.entries {
		if oldestKey == "" || e.expiresAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.expiresAt
		}
	}
	if oldestKey != "" {
		delete(d.entries, oldestKey)
	}
}
