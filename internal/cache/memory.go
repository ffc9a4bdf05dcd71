package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache holds serialized extraction results in process memory.
// Entries are small (one JSON result per document) so no size cap is
// enforced, only TTL eviction.
type MemoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache creates a memory cache with the given default TTL and
// background cleanup interval.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *MemoryCache) Get(key string) ([]byte, bool) {
	v, found := m.c.Get(key)
	if !found {
		return nil, false
	}
	return v.([]byte), true
}

// Set stores a value. ttl == 0 uses the cache default.
func (m *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	m.c.Set(key, value, ttl)
	return nil
}

func (m *MemoryCache) Delete(key string) error {
	m.c.Delete(key)
	return nil
}

func (m *MemoryCache) Clear() error {
	m.c.Flush()
	return nil
}
