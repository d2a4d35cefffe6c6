// SPDX-License-Identifier: MIT

// Package cache stores rendered camera-list responses keyed by catalog
// generation and filter arguments. Entries are raw response bytes, so both
// backends serve exactly what the handler rendered.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a TTL cache over immutable byte payloads.
type Cache interface {
	// Get retrieves a payload. The second return is false when the key is
	// missing or expired.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores a payload with the given TTL.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)
	// Delete removes one key.
	Delete(ctx context.Context, key string)
	// Clear removes all entries.
	Clear(ctx context.Context)
	// Stats returns counters for the cache's lifetime.
	Stats() Stats
	// Close releases backend resources.
	Close() error
}

// Stats holds cache performance counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Sets        int64
	Evictions   int64
	CurrentSize int
}

type entry struct {
	data       []byte
	expiration time.Time
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.expiration)
}

// memoryCache is the in-process backend. A janitor goroutine sweeps expired
// entries so abandoned keys do not accumulate between reads.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	stats   Stats

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewMemoryCache creates an in-memory cache. A positive cleanupInterval
// starts the background sweep; Close stops it.
func NewMemoryCache(cleanupInterval time.Duration) Cache {
	c := &memoryCache{
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	} else {
		close(c.done)
	}
	return c
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[key]
	if !found || e.expired(time.Now()) {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return e.data, true
}

func (c *memoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{
		data:       data,
		expiration: time.Now().Add(ttl),
	}
	c.stats.Sets++
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *memoryCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

func (c *memoryCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.CurrentSize = len(c.entries)
	return stats
}

func (c *memoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
	return nil
}

func (c *memoryCache) deleteExpired() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			c.stats.Evictions++
		}
	}
}

func (c *memoryCache) janitor(interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}

// noOpCache disables caching without branching at call sites.
type noOpCache struct{}

// NewNoOpCache creates a cache that never stores anything.
func NewNoOpCache() Cache {
	return &noOpCache{}
}

func (noOpCache) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (noOpCache) Set(context.Context, string, []byte, time.Duration) {}

func (noOpCache) Delete(context.Context, string) {}

func (noOpCache) Clear(context.Context) {}

func (noOpCache) Stats() Stats { return Stats{} }

func (noOpCache) Close() error { return nil }
