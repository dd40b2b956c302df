package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/cache"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
)

func env(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "congratulator.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error: %v", err)
	}
	if err := Default().ValidateBot(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("ValidateBot() without token code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[assets]
dir = "/srv/assets"

[cache]
backend = "redis"
prefix = "postcard:"
ttl = "720h"

[cache.redis]
addr = "redis:6379"
db = 2

[vk]
group_id = 123
pause = "5s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Assets.Dir != "/srv/assets" {
		t.Errorf("Assets.Dir = %q", cfg.Assets.Dir)
	}
	if cfg.Cache.Backend != cache.BackendRedis || cfg.Cache.Prefix != "postcard:" || cfg.Cache.TTL != 720*time.Hour {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.Redis.Addr != "redis:6379" || cfg.Cache.Redis.DB != 2 {
		t.Errorf("Cache.Redis = %+v", cfg.Cache.Redis)
	}
	if cfg.VK.GroupID != 123 || cfg.VK.Pause != 5*time.Second {
		t.Errorf("VK = %+v", cfg.VK)
	}
	if cfg.VK.Version != "5.199" || cfg.HTTP.Addr != ":8080" {
		t.Error("unset fields should keep their defaults")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.toml")},
		{"bad toml", writeConfig(t, "[cache\n")},
		{"unknown key", writeConfig(t, "[cache]\nbackend = \"memory\"\ncolour = 1\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Load() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil || cfg.Assets.Dir != Default().Assets.Dir {
		t.Errorf("Load(\"\") = %+v, %v; want defaults", cfg, err)
	}
}

func TestApplyEnvLegacyNames(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		"token":      "vk1.a.secret",
		"public_id":  "218000000",
		"redis_host": "redis",
		"redis_port": "6380",
		"redis_db":   "3",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}
	if cfg.VK.Token != "vk1.a.secret" || cfg.VK.GroupID != 218000000 {
		t.Errorf("VK = %+v", cfg.VK)
	}
	if cfg.Cache.Backend != cache.BackendRedis || cfg.Cache.Redis.Addr != "redis:6380" || cfg.Cache.Redis.DB != 3 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if err := cfg.ValidateBot(); err != nil {
		t.Errorf("ValidateBot() error: %v", err)
	}
}

func TestApplyEnvPrefixedWins(t *testing.T) {
	cfg := Default()
	_ = cfg.ApplyEnv(env(map[string]string{
		"token":                       "old",
		"CONGRATULATOR_VK_TOKEN":      "new",
		"redis_host":                  "legacy",
		"CONGRATULATOR_REDIS_ADDR":    "modern:6379",
		"CONGRATULATOR_CACHE_BACKEND": "file",
		"CONGRATULATOR_ASSETS_DIR":    "/a",
	}))
	if cfg.VK.Token != "new" {
		t.Errorf("Token = %q, want new", cfg.VK.Token)
	}
	if cfg.Cache.Redis.Addr != "modern:6379" || cfg.Cache.Backend != cache.BackendFile {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Assets.Dir != "/a" {
		t.Errorf("Assets.Dir = %q", cfg.Assets.Dir)
	}
}

func TestApplyEnvRedisPortOnly(t *testing.T) {
	cfg := Default()
	_ = cfg.ApplyEnv(env(map[string]string{"redis_port": "7000"}))
	if cfg.Cache.Redis.Addr != "localhost:7000" {
		t.Errorf("Addr = %q, want localhost:7000", cfg.Cache.Redis.Addr)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	for _, m := range []map[string]string{
		{"public_id": "club1"},
		{"redis_db": "zero"},
	} {
		cfg := Default()
		if err := cfg.ApplyEnv(env(m)); !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("ApplyEnv(%v) code = %v, want %v", m, errors.GetCode(err), errors.ErrCodeInvalidConfig)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no assets dir", func(c *Config) { c.Assets.Dir = "" }},
		{"quality too high", func(c *Config) { c.Compose.JPEGQuality = 101 }},
		{"unknown digest", func(c *Config) { c.Compose.Digest = "crc32" }},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestComposerAndAssets(t *testing.T) {
	cfg := Default()
	cfg.Compose.Digest = "md5"
	c, err := cfg.Composer()
	if err != nil {
		t.Fatalf("Composer() error: %v", err)
	}
	if h := c.Hash("a", "b", "c"); len(h) != 32 {
		t.Errorf("md5 hash length = %d, want 32", len(h))
	}

	set, err := cfg.Templates()
	if err != nil || len(set.Templates) != 3 {
		t.Errorf("Templates() = %v, %v; want built-in set", set, err)
	}
	bank, err := cfg.Bank()
	if err != nil || len(bank.Groups) == 0 {
		t.Errorf("Bank() = %v, %v; want built-in bank", bank, err)
	}
}
