// Package config loads propdash settings: an embedded default YAML merged
// with an optional user file (YAML or TOML) and environment overrides.
package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"time"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// DefaultConfigYAML returns a copy of the embedded default config.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Config is the merged configuration.
type Config struct {
	App     AppConfig     `yaml:"app" toml:"app"`
	API     APIConfig     `yaml:"api" toml:"api"`
	Cache   CacheConfig   `yaml:"cache" toml:"cache"`
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Display DisplayConfig `yaml:"display" toml:"display"`
}

type AppConfig struct {
	About AboutConfig `yaml:"about" toml:"about"`
}

// AboutConfig describes the app; Description is Markdown.
type AboutConfig struct {
	Name          string `yaml:"name" toml:"name"`
	Description   string `yaml:"description" toml:"description"`
	RepositoryURL string `yaml:"repository_url" toml:"repository_url"`
}

// APIConfig points at the property data API.
type APIConfig struct {
	BaseURL      string   `yaml:"base_url" toml:"base_url"`
	Path         string   `yaml:"path" toml:"path"`
	APIKey       string   `yaml:"api_key,omitempty" toml:"api_key"`
	APIKeyHeader string   `yaml:"api_key_header" toml:"api_key_header"`
	Timeout      Duration `yaml:"timeout" toml:"timeout"`
	MaxRetries   int      `yaml:"max_retries" toml:"max_retries"`
}

// CacheConfig bounds the fetched-document cache.
type CacheConfig struct {
	Enabled  bool     `yaml:"enabled" toml:"enabled"`
	Capacity int      `yaml:"capacity" toml:"capacity"`
	TTL      Duration `yaml:"ttl" toml:"ttl"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr" toml:"addr"`
	ReadTimeout    Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout   Duration `yaml:"write_timeout" toml:"write_timeout"`
	RequestTimeout Duration `yaml:"request_timeout" toml:"request_timeout"`
}

type DisplayConfig struct {
	Locale      string      `yaml:"locale" toml:"locale"`
	Output      string      `yaml:"output" toml:"output"`
	KeyColWidth int         `yaml:"key_col_width" toml:"key_col_width"`
	Theme       ThemeConfig `yaml:"theme" toml:"theme"`
}

// ThemeConfig holds terminal colours as ANSI codes or #rrggbb.
type ThemeConfig struct {
	HeaderFG       string `yaml:"header_fg" toml:"header_fg"`
	HeaderBG       string `yaml:"header_bg" toml:"header_bg"`
	KeyColor       string `yaml:"key_color" toml:"key_color"`
	ValueColor     string `yaml:"value_color" toml:"value_color"`
	SeparatorColor string `yaml:"separator_color" toml:"separator_color"`
	AccentColor    string `yaml:"accent_color" toml:"accent_color"`
	MutedColor     string `yaml:"muted_color" toml:"muted_color"`
}

// Duration is a time.Duration read from and written as text such as "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText writes the duration in Go syntax.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Validate checks the merged configuration.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q must be an absolute URL", c.API.BaseURL)
	}
	if c.API.Timeout.Duration <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("api.max_retries must not be negative")
	}
	if c.Cache.Enabled && c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache.capacity must be positive when the cache is enabled")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}
