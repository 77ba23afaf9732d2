// Package infra provides small concurrency and caching primitives shared
// across the bot: a TTL cache for memoizing generative calls, a single-flight
// group for duplicate suppression, a keyed mutex for per-user serialization,
// and a token-bucket rate limiter for outbound API calls.
package infra

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTTL is the default lifetime of a cache entry. Knowledge answers are
// slow-moving, so a full day between refetches is acceptable.
const DefaultTTL = 24 * time.Hour

// TTLCache is a thread-safe cache with time-based expiry. An entry is stale
// once now - createdAt >= ttl; staleness is checked lazily on read, so stale
// entries may linger until read or until the optional cleanup loop sweeps
// them. When a capacity bound is set, inserting into a full cache evicts the
// oldest entry.
type TTLCache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*cacheEntry[V]
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	flight  Group[K, V]

	stopCh  chan struct{}
	stopped atomic.Bool

	hits   atomic.Uint64
	misses atomic.Uint64
	evicts atomic.Uint64
}

type cacheEntry[V any] struct {
	value     V
	createdAt time.Time
}

// CacheConfig configures a TTLCache.
type CacheConfig struct {
	// TTL is the entry lifetime. Zero or negative means DefaultTTL.
	TTL time.Duration
	// MaxSize bounds the number of entries (0 = unbounded).
	MaxSize int
	// CleanupInterval enables a background sweep of stale entries
	// (0 = lazy expiry only).
	CleanupInterval time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewTTLCache creates a TTL cache with the given configuration.
func NewTTLCache[K comparable, V any](cfg CacheConfig) *TTLCache[K, V] {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	c := &TTLCache[K, V]{
		entries: make(map[K]*cacheEntry[V]),
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
		now:     cfg.Now,
		stopCh:  make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go c.cleanupLoop(cfg.CleanupInterval)
	}

	return c
}

// Get returns the value for key if present and fresh.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && c.stale(entry) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	return entry.value, true
}

// Set stores value under key, replacing any previous entry wholesale.
func (c *TTLCache[K, V]) Set(key K, value V) {
	entry := &cacheEntry[V]{value: value, createdAt: c.now()}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = entry
}

// GetOrLoad returns the cached value for key, or calls loader to produce it.
// Concurrent callers missing on the same key are coalesced so the loader runs
// at most once per race window; a loader failure is returned to every waiter
// and nothing is cached.
func (c *TTLCache[K, V]) GetOrLoad(key K, loader func() (V, error)) (V, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	value, err, _ := c.flight.Do(key, func() (V, error) {
		// Re-check: the winner of an earlier flight may have populated
		// the entry while we queued.
		if value, ok := c.Get(key); ok {
			return value, nil
		}
		value, err := loader()
		if err != nil {
			var zero V
			return zero, err
		}
		c.Set(key, value)
		return value, nil
	})
	return value, err
}

// Delete removes key from the cache.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, stale ones included.
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a point-in-time view of cache counters.
func (c *TTLCache[K, V]) Stats() CacheStats {
	c.mu.Lock()
	size := len(c.entries)
	c.mu.Unlock()

	return CacheStats{
		Size:   size,
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Evicts: c.evicts.Load(),
	}
}

// CacheStats holds cache counters.
type CacheStats struct {
	Size   int
	Hits   uint64
	Misses uint64
	Evicts uint64
}

// Cleanup removes stale entries and reports how many were dropped.
func (c *TTLCache[K, V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if c.stale(entry) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Stop terminates the background cleanup loop, if one was started.
func (c *TTLCache[K, V]) Stop() {
	if c.stopped.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
}

func (c *TTLCache[K, V]) stale(entry *cacheEntry[V]) bool {
	return c.now().Sub(entry.createdAt) >= c.ttl
}

// evictOldest drops the entry with the earliest createdAt. Must be called
// with mu held.
func (c *TTLCache[K, V]) evictOldest() {
	var oldestKey K
	var oldestTime time.Time
	first := true

	for key, entry := range c.entries {
		if first || entry.createdAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.createdAt
			first = false
		}
	}

	if !first {
		delete(c.entries, oldestKey)
		c.evicts.Add(1)
	}
}

func (c *TTLCache[K, V]) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Cleanup()
		case <-c.stopCh:
			return
		}
	}
}
