package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/propdash/pkg/settings"
)

// Environment overrides, applied after the config file.
const (
	EnvAPIBaseURL = settings.EnvPrefix + "API_BASE_URL"
	EnvAPIKey     = settings.EnvPrefix + "API_KEY"
	EnvAPITimeout = settings.EnvPrefix + "API_TIMEOUT"
	EnvAddr       = settings.EnvPrefix + "ADDR"
	EnvLocale     = settings.EnvPrefix + "LOCALE"
	EnvCacheTTL   = settings.EnvPrefix + "CACHE_TTL"
)

const redacted = "********"

// Loader merges defaults, a user file, and the environment. The zero Loader
// reads the embedded defaults and the process environment.
type Loader struct {
	defaultConfig func() ([]byte, error)
	getenv        func(string) string
}

// Load merges the configuration using the default Loader.
func Load(path string) (Config, error) {
	return Loader{}.Load(path)
}

// Load returns the merged, validated configuration. An empty path skips the
// user file. Files ending in .toml are read as TOML; anything else as YAML.
func (l Loader) Load(path string) (Config, error) {
	var cfg Config

	defaults, err := l.defaults()
	if err != nil {
		return cfg, fmt.Errorf("load default config: %w", err)
	}
	if err := yaml.Unmarshal(defaults, &cfg); err != nil {
		return cfg, fmt.Errorf("decode default config: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := decodeFile(path, data, &cfg); err != nil {
			return cfg, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := l.applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (l Loader) defaults() ([]byte, error) {
	if l.defaultConfig != nil {
		return l.defaultConfig()
	}
	if len(embeddedDefaultConfig) == 0 {
		return nil, fmt.Errorf("embedded default config is empty")
	}
	return DefaultConfigYAML(), nil
}

func decodeFile(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

func (l Loader) env(key string) string {
	if l.getenv != nil {
		return l.getenv(key)
	}
	return os.Getenv(key)
}

func (l Loader) applyEnv(cfg *Config) error {
	cfg.API.BaseURL = l.envOr(EnvAPIBaseURL, cfg.API.BaseURL)
	cfg.API.APIKey = l.envOr(EnvAPIKey, cfg.API.APIKey)
	cfg.Server.Addr = l.envOr(EnvAddr, cfg.Server.Addr)
	cfg.Display.Locale = l.envOr(EnvLocale, cfg.Display.Locale)

	var err error
	if cfg.API.Timeout.Duration, err = l.envDuration(EnvAPITimeout, cfg.API.Timeout.Duration); err != nil {
		return err
	}
	if cfg.Cache.TTL.Duration, err = l.envDuration(EnvCacheTTL, cfg.Cache.TTL.Duration); err != nil {
		return err
	}
	return nil
}

func (l Loader) envOr(key, fallback string) string {
	if v := strings.TrimSpace(l.env(key)); v != "" {
		return v
	}
	return fallback
}

func (l Loader) envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(l.env(key))
	if v == "" {
		return fallback, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	// bare integers are seconds
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return fallback, fmt.Errorf("%s: invalid duration %q", key, v)
}

// Marshal renders cfg as YAML with secrets redacted.
func Marshal(cfg Config) ([]byte, error) {
	if cfg.API.APIKey != "" {
		cfg.API.APIKey = redacted
	}
	return yaml.Marshal(cfg)
}
