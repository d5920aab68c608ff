package scorecard

import (
	"sync"
	"time"
)

// ownerCacheEntry holds a cached owner identity with its expiration time.
type ownerCacheEntry struct {
	owner      OwnerInfo
	expiresAt  time.Time
	insertedAt time.Time
}

// ownerCache is a thread-safe in-memory cache of owner identities with TTL
// and max-size eviction. The loader resolves many metrics to few owners per
// request; this keeps the user directory off the hot path. Expired entries
// are lazily evicted on get.
type ownerCache struct {
	mu      sync.Mutex
	items   map[string]*ownerCacheEntry
	maxSize int
	ttl     time.Duration
}

// newOwnerCache creates an owner cache with the given maximum size and TTL.
func newOwnerCache(maxSize int, ttl time.Duration) *ownerCache {
	if maxSize < 1 {
		maxSize = 1
	}
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &ownerCache{
		items:   make(map[string]*ownerCacheEntry, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// get retrieves a cached owner by user id. Returns false if missing or
// expired.
func (c *ownerCache) get(userID string) (OwnerInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[userID]
	if !ok {
		return OwnerInfo{}, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.items, userID)
		return OwnerInfo{}, false
	}
	return e.owner, true
}

// set stores an owner identity. If the cache is at capacity, the oldest
// entry (by insertion time) is evicted first.
func (c *ownerCache) set(userID string, owner OwnerInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()

	if _, ok := c.items[userID]; !ok && len(c.items) >= c.maxSize {
		c.evictOldest()
	}

	c.items[userID] = &ownerCacheEntry{
		owner:      owner,
		expiresAt:  now.Add(c.ttl),
		insertedAt: now,
	}
}

// invalidate removes a user from the cache (after a directory write).
func (c *ownerCache) invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, userID)
}

// evictOldest removes the entry with the oldest insertedAt timestamp.
// Must be called with c.mu held.
func (c *ownerCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	first := true

	for k, e := range c.items {
		if first || e.insertedAt.Before(oldestTime) {
			oldestKey = k
			oldestTime = e.insertedAt
			first = false
		}
	}
	if !first {
		delete(c.items, oldestKey)
	}
}
