package cache

import (
	"context"
	"time"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
)

// Backend names accepted by [Open].
const (
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendNone   = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend string        `toml:"backend"`
	Prefix  string        `toml:"prefix"` // key prefix; ignored by "none"
	TTL     time.Duration `toml:"ttl"`    // 0 keeps entries forever
	Dir     string        `toml:"dir"`    // file backend directory
	Redis   RedisOptions  `toml:"redis"`
	Mongo   MongoOptions  `toml:"mongo"`
}

// Open creates the configured backend.
func Open(ctx context.Context, opts Options) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch opts.Backend {
	case BackendRedis:
		if opts.Redis.Addr == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "redis backend needs an address")
		}
		c = NewRedisCache(opts.Redis, opts.TTL)
	case BackendMongo:
		if opts.Mongo.URI == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo backend needs a uri")
		}
		c, err = NewMongoCache(ctx, opts.Mongo, opts.TTL)
	case BackendMemory, "":
		c = NewMemoryCache(opts.TTL)
	case BackendFile:
		if opts.Dir == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "file backend needs a directory")
		}
		c, err = NewFileCache(opts.Dir, opts.TTL)
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return NewScoped(c, opts.Prefix), nil
}
