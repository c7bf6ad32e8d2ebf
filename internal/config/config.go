package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DefaultRegistryHost = "https://api.modrinth.com/v2"
	DefaultUserAgent    = "modslug/1.1 (github.com/xxxsen/modslug)"
	DefaultOutputFile   = "modrinth_slugs.txt"

	defaultTimeoutMs   = 10000
	defaultDelayMs     = 300
	defaultSearchLimit = 5
	defaultCacheTTL    = 24 * 7
)

// Config describes the application level configuration loaded from json.
type Config struct {
	Registry RegistryConfig `json:"registry"`
	Manifest ManifestConfig `json:"manifest"`
	Output   OutputConfig   `json:"output"`
	Cache    CacheConfig    `json:"cache"`
	Upload   UploadConfig   `json:"upload"`
}

// RegistryConfig holds the options for the Modrinth API.
type RegistryConfig struct {
	Host        string `json:"host"`
	UserAgent   string `json:"user_agent"`
	TimeoutMs   int64  `json:"timeout_ms"`
	DelayMs     int64  `json:"delay_ms"`
	SearchLimit int    `json:"search_limit"`
	Disabled    bool   `json:"disabled"`
}

// ManifestConfig toggles manifest formats.
type ManifestConfig struct {
	DisableTOML bool `json:"disable_toml"`
}

// OutputConfig controls where the slug list is saved.
type OutputConfig struct {
	File string `json:"file"`
}

// CacheConfig locates the sqlite cache of resolved slugs. An empty path
// disables the cache.
type CacheConfig struct {
	Path     string `json:"path"`
	TTLHours int64  `json:"ttl_hours"`
}

// TTL is the maximum age of a cached slug.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// UploadConfig holds the options for copying saved reports to an object
// store. An empty bucket disables the upload.
type UploadConfig struct {
	Host            string `json:"host"`
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	Prefix          string `json:"prefix"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	SessionToken    string `json:"session_token"`
	ForcePathStyle  bool   `json:"force_path_style"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			Host:        DefaultRegistryHost,
			UserAgent:   DefaultUserAgent,
			TimeoutMs:   defaultTimeoutMs,
			DelayMs:     defaultDelayMs,
			SearchLimit: defaultSearchLimit,
		},
		Output: OutputConfig{
			File: DefaultOutputFile,
		},
		Cache: CacheConfig{
			TTLHours: defaultCacheTTL,
		},
	}
}

// Timeout is the per-call HTTP timeout.
func (c RegistryConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Delay is the throttle applied before each resolution.
func (c RegistryConfig) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

// LoadFirst tries to load configuration from the given paths, returning the
// first successfully decoded configuration. If none of the paths exist the
// returned error wraps os.ErrNotExist.
func LoadFirst(paths ...string) (*Config, error) {
	var lastErr error
	for _, path := range paths {
		if path == "" {
			continue
		}
		cfg, err := Load(path)
		if errors.Is(err, os.ErrNotExist) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("config not found in paths %v: %w", paths, os.ErrNotExist)
	}
	return nil, lastErr
}

// Load reads configuration from a single json file path. Fields missing from
// the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate performs basic validation of the configuration.
func (c *Config) Validate() error {
	c.Registry.Host = strings.TrimSuffix(strings.TrimSpace(c.Registry.Host), "/")
	if c.Registry.TimeoutMs < 0 {
		return errors.New("config.registry.timeout_ms must not be negative")
	}
	if c.Registry.DelayMs < 0 {
		return errors.New("config.registry.delay_ms must not be negative")
	}
	if c.Registry.SearchLimit <= 0 {
		c.Registry.SearchLimit = defaultSearchLimit
	}
	if strings.TrimSpace(c.Output.File) == "" {
		return errors.New("config.output.file must be set")
	}
	c.Cache.Path = strings.TrimSpace(c.Cache.Path)
	if c.Cache.TTLHours < 0 {
		return errors.New("config.cache.ttl_hours must not be negative")
	}
	c.Upload.Bucket = strings.TrimSpace(c.Upload.Bucket)
	c.Upload.Prefix = strings.Trim(strings.TrimSpace(c.Upload.Prefix), "/")
	if c.Upload.Bucket == "" && c.Upload.Host != "" {
		return errors.New("config.upload.bucket must be set when upload.host is configured")
	}
	return nil
}
