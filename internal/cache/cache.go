// Package cache stores extraction results keyed by document content,
// so re-submitting the same PDF never pays for another backend call.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey derives a cache key from document bytes. Identical documents
// always map to the same key regardless of filename.
func CacheKey(document []byte) string {
	hash := sha256.Sum256(document)
	return "billparse:v1:" + hex.EncodeToString(hash[:])
}
