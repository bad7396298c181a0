package scoring

import (
	"fmt"
	"sync"
	"time"
)

// Cache memoizes score bundles keyed by (repository id, update timestamp),
// so an unchanged repository is never rescored. Entries are never evicted;
// a changed update time simply produces a new key. The cache is owned by
// whoever constructs the scorer, never package-global.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Bundle
	hits    int64
	misses  int64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Bundle)}
}

func cacheKey(repoID int64, updatedAt time.Time) string {
	return fmt.Sprintf("%d@%d", repoID, updatedAt.UTC().Unix())
}

// Get returns the memoized bundle for (repoID, updatedAt), if present.
func (c *Cache) Get(repoID int64, updatedAt time.Time) (Bundle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[cacheKey(repoID, updatedAt)]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return b, ok
}

// Put stores the bundle for (repoID, updatedAt).
func (c *Cache) Put(repoID int64, updatedAt time.Time, b Bundle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(repoID, updatedAt)] = b
}

// Len returns the number of memoized entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns lifetime hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
