package app

import (
	"sync"
	"time"

	"github.com/yourusername/flix-offline-go/internal/domain"
)

type cacheEntry struct {
	descriptor domain.ContentDescriptor
	storedAt   time.Time
}

// ContentCache keeps catalog descriptors seen while browsing so a download
// can be started from a bare content id. One instance is created at startup
// and handed to whoever needs it.
type ContentCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

// NewContentCache creates a cache whose entries expire after ttl. A zero ttl never expires.
func NewContentCache(ttl time.Duration) *ContentCache {
	return &ContentCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the descriptor cached for contentID
func (c *ContentCache) Get(contentID string) (domain.ContentDescriptor, bool) {
	c.mu.RLock()
	entry, ok := c.entries[contentID]
	c.mu.RUnlock()
	if !ok {
		return domain.ContentDescriptor{}, false
	}

	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		c.Invalidate(contentID)
		return domain.ContentDescriptor{}, false
	}
	return entry.descriptor, true
}

// Set stores desc under its content id
func (c *ContentCache) Set(desc domain.ContentDescriptor) {
	if desc.ContentID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[desc.ContentID] = cacheEntry{descriptor: desc, storedAt: c.now()}
}

// Invalidate drops contentID from the cache
func (c *ContentCache) Invalidate(contentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, contentID)
}

// Reset empties the cache
func (c *ContentCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of cached descriptors, expired ones included
func (c *ContentCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
