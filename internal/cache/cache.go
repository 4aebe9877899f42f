// Package cache provides the in-memory TTL store and memoizer that bound
// outbound lookups.
package cache

import (
	"slices"
	"sync"
	"time"
)

// NoExpiration marks an entry that lives for the rest of the process.
const NoExpiration time.Duration = 0

type notFound struct{}

// NotFound is the value stored for a definitive negative result.
var NotFound any = notFound{}

// IsNotFound reports whether v is the negative-result marker.
func IsNotFound(v any) bool {
	_, ok := v.(notFound)
	return ok
}

// Cache is an in-memory key/value store with per-entry TTL. Expired entries
// are removed by the first Get that sees them, by Prune, and when the store
// is at capacity.
type Cache struct {
	mu       sync.RWMutex
	items    map[string]cacheItem
	maxItems int
	now      func() time.Time
}

type cacheItem struct {
	value     any
	expiresAt time.Time // zero means never
}

func (i cacheItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && !now.Before(i.expiresAt)
}

// Config holds cache configuration.
type Config struct {
	MaxItems int
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{MaxItems: 5000}
}

// New creates a new cache with the given configuration.
func New(cfg Config) *Cache {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 5000
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Cache{
		items:    make(map[string]cacheItem),
		maxItems: cfg.MaxItems,
		now:      cfg.Now,
	}
}

// Get retrieves a live item from the cache. An expired item is deleted and
// reported as absent.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	now := c.now()
	if !item.expired(now) {
		return item.value, true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Re-check: a concurrent Set may have replaced the entry.
	if current, ok := c.items[key]; ok {
		if !current.expired(now) {
			return current.value, true
		}
		delete(c.items, key)
	}
	return nil, false
}

// Set stores value under key for ttl. A ttl of NoExpiration (or any
// non-positive duration) never expires.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxItems {
		c.evictOldest()
	}

	item := cacheItem{value: value}
	if ttl > 0 {
		item.expiresAt = c.now().Add(ttl)
	}
	c.items[key] = item
}

// SetNotFound records a negative result for key.
func (c *Cache) SetNotFound(key string, ttl time.Duration) {
	c.Set(key, NotFound, ttl)
}

// Delete removes an item from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes all items from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheItem)
}

// Len returns the number of stored items, including expired ones not yet
// purged.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Prune removes every expired item and returns how many were removed.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pruneLocked(c.now())
}

func (c *Cache) pruneLocked(now time.Time) int {
	removed := 0
	for key, item := range c.items {
		if item.expired(now) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// evictOldest drops expired items, then the 10% of items closest to
// expiry (must be called with lock held). Entries that never expire go last.
func (c *Cache) evictOldest() {
	c.pruneLocked(c.now())
	if len(c.items) < c.maxItems {
		return
	}

	toRemove := c.maxItems / 10
	if toRemove < 1 {
		toRemove = 1
	}

	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b string) int {
		ea, eb := c.items[a].expiresAt, c.items[b].expiresAt
		switch {
		case ea.Equal(eb):
			return 0
		case ea.IsZero():
			return 1
		case eb.IsZero():
			return -1
		default:
			return ea.Compare(eb)
		}
	})

	for _, key := range keys[:toRemove] {
		delete(c.items, key)
	}
}
