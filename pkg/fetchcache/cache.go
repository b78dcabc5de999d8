// FILE: pkg/fetchcache/cache.go
// PURPOSE: TTL cache in front of external fetches (Gmail). Keyed by
// fetch parameters so distinct parameter sets never share an entry.

package fetchcache

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"ai-mailassist-be/pkg/store"
)

// DefaultTTL matches the upstream fetch window: email lists change slowly
// enough that an hour-old snapshot is acceptable.
const DefaultTTL = time.Hour

type Cache struct {
	entries *gocache.Cache
}

func New(defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Cache{
		entries: gocache.New(defaultTTL, 10*time.Minute),
	}
}

func key(mode string, count int) string {
	return fmt.Sprintf("%s_%d", mode, count)
}

// Get returns the cached documents for the given fetch parameters, or
// ok=false when the entry is absent or its TTL has lapsed.
func (c *Cache) Get(mode string, count int) ([]store.Document, bool) {
	v, found := c.entries.Get(key(mode, count))
	if !found {
		return nil, false
	}
	docs, ok := v.([]store.Document)
	if !ok {
		return nil, false
	}
	return docs, true
}

// Put stores the fetch result under its parameter key. A non-positive ttl
// uses the cache default.
func (c *Cache) Put(mode string, count int, docs []store.Document, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.entries.Set(key(mode, count), docs, ttl)
}

// Invalidate drops the entry for one parameter set, if present.
func (c *Cache) Invalidate(mode string, count int) {
	c.entries.Delete(key(mode, count))
}
