package advisor

import (
	"sync"
	"time"
)

// resultCache is a TTL cache keyed by fingerprint. Expired entries are
// evicted lazily on access; writes are last-writer-wins. A zero TTL
// disables caching entirely.
type resultCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	result  Result
	expires time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *resultCache) Get(fingerprint string) (Result, bool) {
	if c.ttl <= 0 {
		return Result{}, false
	}
	c.mu.RLock()
	e, ok := c.entries[fingerprint]
	c.mu.RUnlock()
	if !ok {
		return Result{}, false
	}
	if c.now().After(e.expires) {
		c.mu.Lock()
		// Re-check under the write lock: another writer may have refreshed.
		if e2, ok := c.entries[fingerprint]; ok && c.now().After(e2.expires) {
			delete(c.entries, fingerprint)
		}
		c.mu.Unlock()
		return Result{}, false
	}
	return e.result, true
}

func (c *resultCache) Put(fingerprint string, r Result) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[fingerprint] = cacheEntry{result: r, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Len reports the number of entries, expired ones included.
func (c *resultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
