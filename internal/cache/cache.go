package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is the expiry applied when a cache is constructed with a
// non-positive TTL. The service configures its own TTL (600s by default).
const DefaultTTL = 5 * time.Minute

// Cache is the interface for expiring key/value backends. Values are opaque
// bytes (the service layer stores JSON-encoded weather data). TTL is fixed
// at construction time.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
}

// InMemoryCache implements Cache with a mutex-guarded map and lazy TTL
// expiry: an expired entry is evicted on read even if Cleanup never runs.
// There is no capacity bound; the deployment target is a single low-traffic
// process and TTL is the only eviction policy.
type InMemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
}

// entry stores a cached value with the time it was written.
type entry struct {
	value    []byte
	storedAt time.Time
}

// NewInMemoryCache creates an in-memory cache whose entries expire ttl after
// being set. Non-positive ttl falls back to DefaultTTL.
func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InMemoryCache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns the value for key if present and younger than the TTL.
// An entry whose age has reached the TTL is removed and reported as a miss.
func (c *InMemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if time.Since(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value under key, overwriting any existing entry and resetting
// its age.
func (c *InMemoryCache) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, storedAt: time.Now()}
	return nil
}

// Delete removes key. Returns true if an entry was present.
func (c *InMemoryCache) Delete(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return false, nil
	}
	delete(c.entries, key)
	return true, nil
}

// Clear removes all entries.
func (c *InMemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	return nil
}

// Cleanup removes every entry whose age has reached the TTL and returns the
// number removed. Lazy expiry on Get keeps reads correct without it; Cleanup
// exists so a periodic sweep can reclaim memory.
func (c *InMemoryCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, e := range c.entries {
		if time.Since(e.storedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently stored, expired or not.
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
