package resolve

import (
	"sync"
	"time"
)

type cacheEntry struct {
	title     string
	expiresAt time.Time
}

// TitleCache is an in-memory TTL cache of resolved titles keyed by URL.
// Expired entries are dropped lazily on Get or in bulk by Cleanup.
type TitleCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func NewTitleCache(ttl time.Duration) *TitleCache {
	return &TitleCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *TitleCache) Get(url string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[url]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		if cur, still := c.entries[url]; still && time.Now().After(cur.expiresAt) {
			delete(c.entries, url)
		}
		c.mu.Unlock()
		return "", false
	}
	return entry.title, true
}

func (c *TitleCache) Set(url, title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = cacheEntry{title: title, expiresAt: time.Now().Add(c.ttl)}
}

// Len counts entries, expired ones included.
func (c *TitleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cleanup removes expired entries and returns how many were removed.
func (c *TitleCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	removed := 0
	for url, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, url)
			removed++
		}
	}
	return removed
}
