package cache

import (
	"time"
)

// CacheService is the shared cache behind the fetcher's per-domain block
// guard: a key present in the cache means the domain recently rate-limited
// us and should not be fetched until the entry expires.
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
