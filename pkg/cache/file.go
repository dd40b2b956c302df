package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores each entry as a JSON file, for CLI usage.
type FileCache struct {
	dir string
	ttl time.Duration
}

// NewFileCache creates a file-based cache in the given directory.
// The directory will be created if it doesn't exist. A ttl of 0 keeps
// entries forever.
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, unavailable(err, "mkdir", dir)
	}
	return &FileCache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// fileEntry wraps a cached link with metadata.
type fileEntry struct {
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"created_at"`
}

// Get retrieves a link from the cache.
func (c *FileCache) Get(ctx context.Context, key string) (string, bool, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable(err, "get", key)
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Invalid cache entry - treat as miss
		_ = os.Remove(path)
		return "", false, nil
	}

	if c.ttl > 0 && time.Since(entry.CreatedAt) > c.ttl {
		_ = os.Remove(path)
		return "", false, nil
	}

	return entry.Link, true, nil
}

// Set stores a link in the cache.
func (c *FileCache) Set(ctx context.Context, key, value string) error {
	data, err := json.Marshal(fileEntry{Link: value, CreatedAt: time.Now()})
	if err != nil {
		return unavailable(err, "set", key)
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return unavailable(err, "set", key)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return unavailable(err, "set", key)
	}
	return nil
}

// Delete removes a link from the cache.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if err != nil && !os.IsNotExist(err) {
		return unavailable(err, "delete", key)
	}
	return nil
}

// Close does nothing for file cache.
func (c *FileCache) Close() error {
	return nil
}

// path converts a cache key to a file path.
// Uses a simple hash-based directory structure to avoid too many files in one dir.
func (c *FileCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	hash := hex.EncodeToString(sum[:])
	return filepath.Join(c.dir, hash[:2], hash[2:]+".json")
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
