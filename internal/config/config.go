package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Transport names accepted in Config.Transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

const (
	defaultListen      = "127.0.0.1:8080"
	defaultLogLevel    = "info"
	defaultZoneRefresh = "@daily"
	defaultBurst       = 10
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the HTTP transport.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// RateLimitConfig configures the token bucket in front of the HTTP handlers.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate. Zero disables limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	// Burst is the bucket size.
	Burst int `yaml:"burst" json:"burst"`
}

// Config is the top-level application configuration.
type Config struct {
	// Transport selects how tools are served: "stdio" (MCP over stdin/stdout)
	// or "http".
	Transport string `yaml:"transport" json:"transport"`

	// Listen is the HTTP listen address, used when Transport is "http".
	Listen string `yaml:"listen" json:"listen"`

	// Timezone overrides the zone treated as "local" by the tools
	// (e.g. "Asia/Seoul"). Empty means the system zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// ZoneRefresh is a cron spec (e.g. "@daily", "0 3 * * *") on which the
	// timezone cache is dropped so zoneinfo updates are picked up. Empty
	// disables the schedule.
	ZoneRefresh string `yaml:"zone_refresh" json:"zone_refresh"`

	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Transport:   TransportStdio,
		Listen:      defaultListen,
		Timezone:    "",
		LogLevel:    defaultLogLevel,
		ZoneRefresh: defaultZoneRefresh,
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 0,
			Burst:             defaultBurst,
		},
		BasicAuth: nil,
	}
}

// Normalize replaces unknown or zero values with their defaults.
func (c *Config) Normalize() {
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		c.Transport = TransportStdio
	}
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		c.RateLimit.RequestsPerSecond = 0
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = defaultBurst
	}
}

// Load reads the YAML file at path. A missing file is created with the
// defaults (parent directories included, mode 0600) and the defaults are
// returned. Keys absent from an existing file keep their DefaultConfig
// values, so a missing zone_refresh still means "@daily" while an explicit
// empty string turns the schedule off.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, fmt.Errorf("write default config: %w", err)
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()

	return cfg, nil
}

// Save normalizes cfg and writes it to path through a temp file in the same
// directory, renamed into place with mode 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".datetimeday-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save writes c to path; see Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// BasicAuthEnabled reports whether both a username and a password are set.
func (c *Config) BasicAuthEnabled() bool {
	return c != nil && c.BasicAuth != nil && c.BasicAuth.Username != "" && c.BasicAuth.Password != ""
}
