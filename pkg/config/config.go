// Package config loads congratulator settings from a TOML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the TOML file, environment
// variables. The bot's historical variable names (token, public_id,
// redis_host, redis_port, redis_db) are honoured next to the
// CONGRATULATOR_* names; when both are set the CONGRATULATOR_* one wins.
package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/cache"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/compose"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/phrases"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/template"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/vk"
)

// Config is the full application configuration.
type Config struct {
	Assets  Assets        `toml:"assets"`
	Compose Compose       `toml:"compose"`
	Cache   cache.Options `toml:"cache"`
	VK      VK            `toml:"vk"`
	HTTP    HTTP          `toml:"http"`
}

// Assets locates template images, fonts and the data files describing them.
type Assets struct {
	Dir       string `toml:"dir"`       // root for template image and font paths
	Templates string `toml:"templates"` // template set TOML; empty uses the built-in set
	Phrases   string `toml:"phrases"`   // phrase bank TOML; empty uses the built-in bank
}

// Compose tunes greeting composition and encoding.
type Compose struct {
	Closing     string `toml:"closing"`
	Digest      string `toml:"digest"`
	JPEGQuality int    `toml:"jpeg_quality"`
}

// VK configures the community bot.
type VK struct {
	Token   string        `toml:"token"`
	GroupID int64         `toml:"group_id"`
	Version string        `toml:"version"`
	BaseURL string        `toml:"base_url"`
	Wait    int           `toml:"wait"`  // long-poll wait, seconds
	Pause   time.Duration `toml:"pause"` // wait before reconnecting
}

// HTTP configures the HTTP server and its local upload directory.
type HTTP struct {
	Addr      string `toml:"addr"`
	UploadDir string `toml:"upload_dir"`
	PublicURL string `toml:"public_url"` // prefix for links to uploaded files
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Assets: Assets{Dir: "assets"},
		Compose: Compose{
			Closing:     compose.DefaultClosing,
			Digest:      compose.SHA256.Name,
			JPEGQuality: 90,
		},
		Cache: cache.Options{
			Backend: cache.BackendMemory,
			Dir:     "cache",
			Redis:   cache.RedisOptions{Addr: "localhost:6379"},
			Mongo:   cache.MongoOptions{Database: "congratulator", Collection: "postcards"},
		},
		VK: VK{
			Version: vk.DefaultVersion,
			BaseURL: vk.DefaultBaseURL,
			Wait:    vk.DefaultWait,
			Pause:   15 * time.Second,
		},
		HTTP: HTTP{
			Addr:      ":8080",
			UploadDir: "uploads",
			PublicURL: "/files",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	get := func(keys ...string) (string, bool) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				return v, true
			}
		}
		return "", false
	}

	if v, ok := get("CONGRATULATOR_VK_TOKEN", "token"); ok {
		c.VK.Token = v
	}
	if v, ok := get("CONGRATULATOR_VK_GROUP_ID", "public_id"); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "group id %q", v)
		}
		c.VK.GroupID = id
	}

	host, hostOK := get("redis_host")
	port, portOK := get("redis_port")
	if hostOK || portOK {
		if !hostOK {
			host = "localhost"
		}
		if !portOK {
			port = "6379"
		}
		c.Cache.Redis.Addr = net.JoinHostPort(host, port)
		c.Cache.Backend = cache.BackendRedis
	}
	if v, ok := get("CONGRATULATOR_REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
		c.Cache.Backend = cache.BackendRedis
	}
	if v, ok := get("CONGRATULATOR_REDIS_DB", "redis_db"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "redis db %q", v)
		}
		c.Cache.Redis.DB = db
	}
	if v, ok := get("CONGRATULATOR_REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := get("CONGRATULATOR_MONGO_URI"); ok {
		c.Cache.Mongo.URI = v
	}
	if v, ok := get("CONGRATULATOR_CACHE_BACKEND"); ok {
		c.Cache.Backend = v
	}
	if v, ok := get("CONGRATULATOR_ASSETS_DIR"); ok {
		c.Assets.Dir = v
	}
	if v, ok := get("CONGRATULATOR_HTTP_ADDR"); ok {
		c.HTTP.Addr = v
	}
	return nil
}

// Validate checks settings shared by every command.
func (c Config) Validate() error {
	if c.Assets.Dir == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "assets.dir is required")
	}
	if c.Compose.JPEGQuality < 0 || c.Compose.JPEGQuality > 100 {
		return errors.New(errors.ErrCodeInvalidConfig, "compose.jpeg_quality must be 0-100, got %d", c.Compose.JPEGQuality)
	}
	if _, err := compose.DigestByName(c.Compose.Digest); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "compose.digest")
	}
	switch c.Cache.Backend {
	case cache.BackendRedis, cache.BackendMongo, cache.BackendMemory, cache.BackendFile, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q is not one of redis, mongo, memory, file, none", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}

// ValidateBot checks the settings the VK bot needs on top of Validate.
func (c Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.VK.Token == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "vk.token is required (or set token)")
	}
	if c.VK.GroupID <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "vk.group_id must be positive (or set public_id)")
	}
	return nil
}

// Composer builds the greeting composer described by the config.
func (c Config) Composer() (*compose.Composer, error) {
	d, err := compose.DigestByName(c.Compose.Digest)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "compose.digest")
	}
	closing := c.Compose.Closing
	if closing == "" {
		closing = compose.DefaultClosing
	}
	return compose.New(compose.WithClosing(closing), compose.WithDigest(d)), nil
}

// Templates loads the configured template set.
func (c Config) Templates() (*template.Set, error) {
	if c.Assets.Templates == "" {
		return template.Default(), nil
	}
	return template.Load(c.Assets.Templates)
}

// Bank loads and validates the configured phrase bank.
func (c Config) Bank() (*phrases.Bank, error) {
	if c.Assets.Phrases == "" {
		return phrases.Default(), nil
	}
	return phrases.Load(c.Assets.Phrases)
}
