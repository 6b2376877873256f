package places

import (
	"time"

	"bverlaan/yogabench/logger"
)

// WebsiteResolver resolves a competitor's website URL.
type WebsiteResolver interface {
	Website(name, address, city string) (string, error)
}

// Resolver memoizes website lookups through the places cache, consulting
// the paid lookup service only on a cache miss. Lookup results are stored
// in the cache regardless of outcome so an absent website is not re-queried
// within the cache's lifetime.
type Resolver struct {
	cache  *Cache
	client *Client
	delay  time.Duration
	log    *logger.Logger
}

// NewResolver creates a resolver over the given cache and client. delay is
// slept after every paid lookup to respect the service's rate limits.
func NewResolver(cache *Cache, client *Client, delay time.Duration) *Resolver {
	return &Resolver{
		cache:  cache,
		client: client,
		delay:  delay,
		log:    logger.ForCrawl(),
	}
}

// Website returns the competitor's website, from the cache when memoized.
func (r *Resolver) Website(name, address, city string) (string, error) {
	key := CacheKey(name, address, city)
	if entry, ok := r.cache.Get(key); ok {
		return entry.Website, nil
	}

	entry, err := r.client.Lookup(name + " " + address + " " + city)
	if err != nil {
		return "", err
	}
	r.cache.Put(key, entry)
	r.log.WithField("competitor", name).
		WithField("website", entry.Website).
		Debug("resolved website via places lookup")

	time.Sleep(r.delay)
	return entry.Website, nil
}
