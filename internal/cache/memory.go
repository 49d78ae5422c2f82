package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is a single-writer in-memory Cache backend. It guards its
// map with a single mutex, the way a simple in-memory limiter guards its
// client map, and expires
// entries lazily on access, matching spec.md §4.1 ("expiration is lazy,
// checked on access").
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	expiresAt time.Time // zero means no expiry
	raw       []byte
}

// NewMemoryCache constructs an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := encodeValue(value)
	if err != nil {
		return operationFailed("set", err)
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = memoryEntry{raw: raw, expiresAt: expiresAt}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	entry, found := c.entries[key]
	if found && c.expired(entry) {
		delete(c.entries, key)
		found = false
	}
	c.mu.Unlock()

	if !found {
		return false, nil
	}
	return decodeInto(entry.raw, dest)
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.entries[key]
	if !found {
		return false, nil
	}
	if c.expired(entry) {
		delete(c.entries, key)
		return false, nil
	}
	return true, nil
}

func (c *MemoryCache) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)
}

// Sweep removes all expired entries. Callers may run this on a ticker;
// lazy per-access expiry alone bounds memory only by read traffic, so a
// background sweep is offered as an option (spec.md §4.1: "lazy ...  with
// an optional sweep").
func (c *MemoryCache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if c.expired(entry) {
			delete(c.entries, key)
		}
	}
}

// Flush removes every entry, mirroring the remote backend's
// database-scoped FLUSHDB for tests and local dev resets.
func (c *MemoryCache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
}
