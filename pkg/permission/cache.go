package permission

import "sync"

// cacheKey identifies one request in the session cache.
type cacheKey struct {
	fileID      string
	directoryID string
}

// sessionCache memoizes explicit decisions for the lifetime of the process,
// keyed by (fileID, directoryID). It avoids repeat consent prompts for the
// same file and directory pair.
type sessionCache struct {
	entries map[cacheKey]Decision
	mu      sync.RWMutex
}

func newSessionCache() *sessionCache {
	return &sessionCache{
		entries: make(map[cacheKey]Decision),
	}
}

// get returns the cached decision for a request identity, if any.
func (c *sessionCache) get(fileID, directoryID string) (Decision, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	decision, ok := c.entries[cacheKey{fileID, directoryID}]
	return decision, ok
}

// put records a decision for a request identity.
func (c *sessionCache) put(fileID, directoryID string, decision Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey{fileID, directoryID}] = decision
}

// invalidateDirectory drops every entry belonging to a directory. Called
// when that directory's policy changes so the new policy takes effect
// immediately.
func (c *sessionCache) invalidateDirectory(directoryID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for key := range c.entries {
		if key.directoryID == directoryID {
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped
}

// clear drops every entry.
func (c *sessionCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[cacheKey]Decision)
}

// size returns the number of cached decisions.
func (c *sessionCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
