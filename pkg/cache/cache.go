// Package cache stores the mapping from greeting content hashes to uploaded
// postcard links.
//
// A hash always identifies the same rendered content, so entries are
// effectively write-once: overwriting is harmless and last write wins. There
// are no transactions and no cross-key ordering.
//
// Backends:
//   - [RedisCache]: shared store for production bots (github.com/redis/go-redis/v9)
//   - [MongoCache]: document store alternative (go.mongodb.org/mongo-driver)
//   - [MemoryCache]: in-process store with expiry (github.com/patrickmn/go-cache)
//   - [FileCache]: one JSON file per key, for the CLI
//   - [NullCache]: stores nothing
//
// Backend failures are reported as CACHE_UNAVAILABLE errors. A miss is not
// an error: Get returns ok == false and a nil error.
package cache

import (
	"context"
	"regexp"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
)

// Cache maps content hashes to links.
type Cache interface {
	// Get returns the value stored under key. ok is false on a miss.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

var keyRegex = regexp.MustCompile(`^[0-9a-f]{32,128}$`)

// ValidateKey checks that key is a lowercase hex digest.
func ValidateKey(key string) error {
	if !keyRegex.MatchString(key) {
		return errors.New(errors.ErrCodeInvalidInput, "cache key must be a lowercase hex digest, got %q", key)
	}
	return nil
}

// unavailable wraps a backend failure.
func unavailable(err error, op, key string) error {
	return errors.Wrap(errors.ErrCodeCacheUnavailable, err, "cache %s %s", op, key)
}
