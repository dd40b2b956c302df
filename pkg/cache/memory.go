package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps links in process memory. Entries are lost on restart,
// which only costs re-uploads.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates an in-memory cache. A ttl of 0 keeps entries
// until the process exits.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		return &MemoryCache{store: gocache.New(gocache.NoExpiration, 0)}
	}
	return &MemoryCache{store: gocache.New(ttl, 2*ttl)}
}

// Get retrieves a link.
func (c *MemoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	return s, ok, nil
}

// Set stores a link with the default expiration.
func (c *MemoryCache) Set(ctx context.Context, key, value string) error {
	c.store.SetDefault(key, value)
	return nil
}

// Delete removes a link.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// cleaned up.
func (c *MemoryCache) Len() int {
	return c.store.ItemCount()
}

// Close drops all entries.
func (c *MemoryCache) Close() error {
	c.store.Flush()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
