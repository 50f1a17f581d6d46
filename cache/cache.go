package cache

import (
	"fmt"
	"sync"
	"time"
)

// Config configures a cache instance.
type Config struct {
	// DefaultTTL is the time-to-live applied by Set. Must be positive.
	DefaultTTL time.Duration
}

// DefaultConfig returns the default configuration: entries live one hour,
// suited to lookups that rarely change.
func DefaultConfig() Config {
	return Config{DefaultTTL: time.Hour}
}

// entry holds a value with its absolute expiry.
type entry[V any] struct {
	value  V
	expiry time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return now.After(e.expiry)
}

// Cache is an in-memory key/value store with per-entry TTL.
// Expiry is lazy: expired entries are removed when Get observes them or
// when CleanupExpired sweeps; there is no background timer. An expired
// entry is never returned.
//
// Get reports presence explicitly, so a stored zero value is
// distinguishable from a miss.
type Cache[V any] struct {
	defaultTTL time.Duration

	mu      sync.Mutex
	entries map[string]entry[V]
}

// New creates a cache. It fails if DefaultTTL is not strictly positive.
func New[V any](cfg Config) (*Cache[V], error) {
	if cfg.DefaultTTL <= 0 {
		return nil, fmt.Errorf("cache: default TTL must be positive, got %s", cfg.DefaultTTL)
	}

	return &Cache[V]{
		defaultTTL: cfg.DefaultTTL,
		entries:    make(map[string]entry[V]),
	}, nil
}

// Get returns the value for key and whether it was present.
// An entry whose TTL has passed is deleted as a side effect and reported
// absent.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	if e.expired(time.Now()) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}

	return e.value, true
}

// Set stores a value under key with the cache-wide default TTL,
// overwriting any existing entry.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores a value under key with an entry-specific TTL,
// overwriting any existing entry.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:  value,
		expiry: time.Now().Add(ttl),
	}
}

// Delete removes the entry for key, if any.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// CleanupExpired removes every entry whose TTL has passed and returns the
// number removed. It is an explicit sweep for callers that want proactive
// eviction; nothing invokes it automatically.
func (c *Cache[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of entries, including any whose expiry has
// passed but has not yet been observed.
func (c *Cache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// DefaultTTL returns the cache-wide default time-to-live.
func (c *Cache[V]) DefaultTTL() time.Duration {
	return c.defaultTTL
}
