package cache

import "time"

// LayeredCache fronts the disk cache with a memory tier. Repeat parses
// of the same document within a run hit memory; across runs they hit
// disk and get promoted.
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a memory-over-disk cache.
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

func (l *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := l.memory.Get(key); found {
		return val, true
	}

	val, found := l.disk.Get(key)
	if !found {
		return nil, false
	}
	_ = l.memory.Set(key, val, 0)
	return val, true
}

func (l *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := l.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return l.disk.Set(key, value, ttl)
}

func (l *LayeredCache) Delete(key string) error {
	memErr := l.memory.Delete(key)
	if err := l.disk.Delete(key); err != nil {
		return err
	}
	return memErr
}

func (l *LayeredCache) Clear() error {
	memErr := l.memory.Clear()
	if err := l.disk.Clear(); err != nil {
		return err
	}
	return memErr
}
