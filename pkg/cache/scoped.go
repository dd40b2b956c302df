package cache

import "context"

// ScopedCache prefixes every key, so several bots or template sets can
// share one backend without colliding.
//
// Example usage:
//
//	c := NewScoped(NewRedisCache(opts, 0), "postcard:")
//	c.Set(ctx, hash, link) // stored as "postcard:<hash>"
type ScopedCache struct {
	inner  Cache
	prefix string
}

// NewScoped wraps inner with a key prefix. An empty prefix returns inner.
func NewScoped(inner Cache, prefix string) Cache {
	if prefix == "" {
		return inner
	}
	return &ScopedCache{inner: inner, prefix: prefix}
}

// Get retrieves a prefixed key.
func (c *ScopedCache) Get(ctx context.Context, key string) (string, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

// Set stores a prefixed key.
func (c *ScopedCache) Set(ctx context.Context, key, value string) error {
	return c.inner.Set(ctx, c.prefix+key, value)
}

// Delete removes a prefixed key.
func (c *ScopedCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close closes the wrapped cache.
func (c *ScopedCache) Close() error {
	return c.inner.Close()
}

var _ Cache = (*ScopedCache)(nil)
