package cli

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stacksolve/internal/server"
	"github.com/matzehuels/stacksolve/pkg/deps"
	"github.com/matzehuels/stacksolve/pkg/deps/mongostore"
	"github.com/matzehuels/stacksolve/pkg/engine"
)

// Environment variables that override the config file.
const (
	envMongoURI = "STACKSOLVE_MONGO_URI"
	envRedisURL = "STACKSOLVE_REDIS_URL"
	envCatalog  = "STACKSOLVE_CATALOG"
)

// Config is the optional TOML configuration file.
//
//	[resolve]
//	max_depth = 6
//	search_budget = 500
//
//	[store]
//	catalog = "packages.toml"
//
//	[cache]
//	ttl = "12h"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":9090"
type Config struct {
	Resolve ResolveConfig `toml:"resolve"`
	Store   StoreConfig   `toml:"store"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
}

// ResolveConfig holds default constraints and engine tuning.
type ResolveConfig struct {
	engine.Constraints
	Workers       int      `toml:"workers"`
	LookupTimeout Duration `toml:"lookup_timeout"`
	Retries       int      `toml:"retries"`
	History       int      `toml:"history"`
}

// StoreConfig selects the metadata store. A MongoDB URI wins over a catalog.
type StoreConfig struct {
	Catalog  string `toml:"catalog"`
	MongoURI string `toml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db"`
}

// CacheConfig configures the metadata cache.
type CacheConfig struct {
	Disabled bool     `toml:"disabled"`
	Dir      string   `toml:"dir"`
	TTL      Duration `toml:"ttl"`
	RedisURL string   `toml:"redis_url"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr          string `toml:"addr"`
	AllowedOrigin string `toml:"allowed_origin"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	d.Duration = v
	return nil
}

// MarshalText renders the duration in Go syntax.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() *Config {
	return &Config{
		Store:  StoreConfig{MongoDB: mongostore.DefaultDatabase},
		Cache:  CacheConfig{TTL: Duration{deps.DefaultCacheTTL}},
		Server: ServerConfig{Addr: server.DefaultAddr, AllowedOrigin: server.DefaultAllowedOrigin},
	}
}

// LoadConfig reads path, or the default config file when path is empty.
// A missing default file is not an error. Environment variables override
// file values.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err == nil {
			path = filepath.Join(dir, "config.toml")
		}
	}
	if path != "" {
		_, err := toml.DecodeFile(path, cfg)
		switch {
		case err == nil:
		case !explicit && stderrors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if v := os.Getenv(envMongoURI); v != "" {
		cfg.Store.MongoURI = v
	}
	if v := os.Getenv(envRedisURL); v != "" {
		cfg.Cache.RedisURL = v
	}
	if v := os.Getenv(envCatalog); v != "" {
		cfg.Store.Catalog = v
	}
	if err := cfg.Resolve.Validate(); err != nil {
		return nil, fmt.Errorf("config [resolve]: %w", err)
	}
	return cfg, nil
}

// buildOptions maps the resolve section onto builder options.
func (r ResolveConfig) buildOptions() deps.Options {
	return deps.Options{
		Workers:       r.Workers,
		LookupTimeout: r.LookupTimeout.Duration,
		Retries:       r.Retries,
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/stacksolve/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/stacksolve/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
