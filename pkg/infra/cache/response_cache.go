// Package cache provides the in-process TTL response cache §4.1 and §9
// specify for idempotent hot-path reads (dashboard, profile, per-project
// stats). §9's "Implicit globals" note calls for caches to be explicit,
// dependency-injected collaborators rather than module-local maps, so this
// is a struct that routing.NewRouter constructs (one per cached route
// group) and hands to the response-cache middleware, the same way the teacher's
// RateLimiter (cmd/rest-api/middlewares/rate_limit_middleware.go) is a
// struct rather than a package-level map.
package cache

import (
	"sync"
	"time"
)

type entryKey struct {
	route  string
	userID string
}

type entry struct {
	body        []byte
	contentType string
	expiresAt   time.Time
}

// ResponseCache is a per-(route, userId) TTL cache of successful response
// bodies. It is safe for concurrent use; each key has an independent
// critical section is unnecessary here since entries are whole-value
// replaced, so a single RWMutex guarding the map is sufficient (§5: "safe
// under contention", not a requirement for per-key locks on every
// collaborator).
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[entryKey]entry
	ttl     time.Duration
}

// NewResponseCache builds a cache with a fixed TTL for all entries. Callers
// needing different TTLs per route construct one ResponseCache per TTL
// tier; that's simpler than per-entry TTL bookkeeping and matches how few
// distinct hot paths §4.1 actually names.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		entries: make(map[entryKey]entry),
		ttl:     ttl,
	}
}

// Get returns the cached body for (route, userID) if present and unexpired.
func (c *ResponseCache) Get(route, userID string) ([]byte, string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[entryKey{route: route, userID: userID}]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, "", false
	}
	return e.body, e.contentType, true
}

// Set stores a successful response body for (route, userID).
func (c *ResponseCache) Set(route, userID string, body []byte, contentType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entryKey{route: route, userID: userID}] = entry{
		body:        body,
		contentType: contentType,
		expiresAt:   time.Now().Add(c.ttl),
	}
}

// InvalidateUser drops every cached entry belonging to userID, per §4.1:
// "Any mutation by the same user invalidates that user's cache entries."
func (c *ResponseCache) InvalidateUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.userID == userID {
			delete(c.entries, k)
		}
	}
}
