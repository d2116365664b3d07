package news

import "time"

// DefaultCacheTTL is how long a cached provider result stays fresh.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	payload   any
	fetchedAt time.Time
}

// SearchCache memoizes provider results by query signature with a fixed TTL.
// Stale entries are ignored at lookup time and overwritten on the next store;
// there is no background eviction. Not safe for concurrent use, matching the
// single-request-at-a-time execution model.
type SearchCache struct {
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

// NewSearchCache creates a cache with the given TTL (DefaultCacheTTL if <= 0).
func NewSearchCache(ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &SearchCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Lookup returns the cached payload for a signature if it is still fresh.
func (c *SearchCache) Lookup(signature string) (any, bool) {
	e, ok := c.entries[signature]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.payload, true
}

// Store overwrites any existing entry for the signature.
func (c *SearchCache) Store(signature string, payload any) {
	c.entries[signature] = cacheEntry{payload: payload, fetchedAt: c.now()}
}

// Clear drops all entries.
func (c *SearchCache) Clear() {
	c.entries = make(map[string]cacheEntry)
}

// CacheStats describes the current cache contents.
type CacheStats struct {
	Entries int
	TTL     time.Duration
}

// Stats reports the entry count (fresh and stale alike) and the TTL.
func (c *SearchCache) Stats() CacheStats {
	return CacheStats{Entries: len(c.entries), TTL: c.ttl}
}
