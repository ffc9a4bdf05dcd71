package cache

import (
	"testing"
	"time"
)

func TestCacheKey_Deterministic(t *testing.T) {
	a := CacheKey([]byte("%PDF-1.4 fake document"))
	b := CacheKey([]byte("%PDF-1.4 fake document"))
	if a != b {
		t.Error("same bytes must map to the same key")
	}
	if a == CacheKey([]byte("%PDF-1.4 other document")) {
		t.Error("different bytes must map to different keys")
	}
	if len(a) == 0 {
		t.Error("empty key")
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)
	key := CacheKey([]byte("doc"))

	if _, found := c.Get(key); found {
		t.Error("unexpected hit on empty cache")
	}

	if err := c.Set(key, []byte("payload"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	val, found := c.Get(key)
	if !found || string(val) != "payload" {
		t.Errorf("expected payload, got %q (found=%v)", val, found)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)
	key := CacheKey([]byte("doc"))

	if err := c.Set(key, []byte("payload"), -time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("hit on expired entry")
	}
}

func TestLayeredCache_DiskPromotion(t *testing.T) {
	dir := t.TempDir()
	key := CacheKey([]byte("doc"))

	disk := NewDiskCache(dir, time.Minute)
	if err := disk.Set(key, []byte("payload"), 0); err != nil {
		t.Fatalf("seed disk: %v", err)
	}

	layered := NewLayeredCache(time.Minute, dir, time.Minute)
	val, found := layered.Get(key)
	if !found || string(val) != "payload" {
		t.Errorf("expected disk hit through layered cache, got %q (found=%v)", val, found)
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	key := CacheKey([]byte("doc"))

	if _, found := c.Get(key); found {
		t.Error("unexpected hit on empty cache")
	}

	if err := c.Set(key, []byte("payload"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	val, found := c.Get(key)
	if !found || string(val) != "payload" {
		t.Errorf("expected payload, got %q (found=%v)", val, found)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("hit after delete")
	}
}
