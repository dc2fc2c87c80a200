// Package cache provides an in-memory TTL cache for analysis results.
//
// The cache is best-effort and non-authoritative: the database is the source
// of truth, the cache only exists to keep repeated checks off the store and
// the external API. It may be dropped and rebuilt at any time without
// correctness loss.
package cache

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/metrics"
)

// DefaultTTL is how long an entry stays fresh unless SetTTL overrides it.
const DefaultTTL = 300 * time.Second

type entry[T any] struct {
	data      T
	createdAt time.Time
	expiresAt time.Time
}

// Cache is a mutex-guarded key/value store with per-entry expiry. Expired
// entries are evicted lazily on read; the eviction timer only bounds memory.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]entry[T]
	ttl     time.Duration
	clock   clockwork.Clock
}

// New creates a cache with the given default TTL. A ttl of 0 falls back to
// DefaultTTL.
func New[T any](ttl time.Duration, clock clockwork.Clock) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[T]{
		entries: make(map[string]entry[T]),
		ttl:     ttl,
		clock:   clock,
	}
}

// Set stores a value under key with the default TTL, overwriting any
// previous entry.
func (c *Cache[T]) Set(key string, data T) {
	c.SetTTL(key, data, c.ttl)
}

// SetTTL stores a value under key with an explicit TTL.
func (c *Cache[T]) SetTTL(key string, data T, ttl time.Duration) {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[T]{
		data:      data,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

// Get returns the cached value for key. An entry past its expiry is treated
// as absent and removed.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.clock.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	return e.data, true
}

// Has reports whether key holds a live entry.
func (c *Cache[T]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes key from the cache.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[T])
}

// Age returns how long ago the entry for key was written. Expired entries
// report false like Get does.
func (c *Cache[T]) Age(key string) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	now := c.clock.Now()
	if now.After(e.expiresAt) {
		delete(c.entries, key)
		return 0, false
	}
	return now.Sub(e.createdAt), true
}

// Len returns the current number of entries, including not-yet-evicted
// expired ones.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// EvictExpired removes all expired entries and returns the count evicted.
func (c *Cache[T]) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

// StartEvictionTimer starts a background goroutine that periodically evicts
// expired entries. Returns a stop function that must be called on shutdown.
func (c *Cache[T]) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.Chan():
				evicted := c.EvictExpired()
				if evicted > 0 {
					slog.Debug("Evicted expired cache entries",
						"count", evicted,
						"remaining", c.Len(),
					)
					metrics.CacheEvictions.Add(float64(evicted))
				}
				metrics.CacheSize.Set(float64(c.Len()))

			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}
