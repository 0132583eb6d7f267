package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func TestLoadDefaults(t *testing.T) {
	cfg, err := Loader{getenv: noEnv}.Load("")
	require.NoError(t, err)
	assert.Equal(t, "propdash", cfg.App.About.Name)
	assert.NotEmpty(t, strings.TrimSpace(cfg.App.About.Description))
	assert.Equal(t, "/v1/property", cfg.API.Path)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout.Duration)
	assert.Equal(t, 2, cfg.API.MaxRetries)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 128, cfg.Cache.Capacity)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL.Duration)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "en-US", cfg.Display.Locale)
	assert.Equal(t, "table", cfg.Display.Output)
	assert.Equal(t, "14", cfg.Display.Theme.KeyColor)
}

func TestLoadYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`api:
  base_url: https://data.example.org
  timeout: 3s
display:
  locale: de-DE
  theme:
    key_color: "#00ff00"
`), 0o600))

	cfg, err := Loader{getenv: noEnv}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://data.example.org", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout.Duration)
	assert.Equal(t, "/v1/property", cfg.API.Path, "unset keys keep defaults")
	assert.Equal(t, "de-DE", cfg.Display.Locale)
	assert.Equal(t, "#00ff00", cfg.Display.Theme.KeyColor)
	assert.Equal(t, "252", cfg.Display.Theme.ValueColor)
}

func TestLoadTOMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`[api]
base_url = "https://toml.example.org"
max_retries = 5

[cache]
ttl = "30s"
`), 0o600))

	cfg, err := Loader{getenv: noEnv}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://toml.example.org", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.API.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL.Duration)
	assert.Equal(t, 128, cfg.Cache.Capacity)
}

func TestLoadEnvOverrides(t *testing.T) {
	env := map[string]string{
		EnvAPIBaseURL: "https://env.example.org",
		EnvAPIKey:     "secret",
		EnvAddr:       "127.0.0.1:9999",
		EnvAPITimeout: "7",
		EnvCacheTTL:   "1m",
	}
	cfg, err := Loader{getenv: func(k string) string { return env[k] }}.Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.org", cfg.API.BaseURL)
	assert.Equal(t, "secret", cfg.API.APIKey)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, 7*time.Second, cfg.API.Timeout.Duration)
	assert.Equal(t, time.Minute, cfg.Cache.TTL.Duration)
}

func TestLoadEnvInvalidDuration(t *testing.T) {
	_, err := Loader{getenv: func(k string) string {
		if k == EnvAPITimeout {
			return "soon"
		}
		return ""
	}}.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvAPITimeout)
}

func TestLoadErrors(t *testing.T) {
	_, err := Loader{getenv: noEnv}.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("api:\n  timeout: forever\n"), 0o600))
	_, err = Loader{getenv: noEnv}.Load(bad)
	assert.Error(t, err)

	_, err = Loader{getenv: noEnv, defaultConfig: func() ([]byte, error) { return []byte("api: ["), nil }}.Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Loader{getenv: noEnv}.Load("")
	require.NoError(t, err)

	bad := cfg
	bad.API.BaseURL = "not-a-url"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Cache.Capacity = 0
	assert.Error(t, bad.Validate())

	bad.Cache.Enabled = false
	assert.NoError(t, bad.Validate())

	bad = cfg
	bad.API.MaxRetries = -1
	assert.Error(t, bad.Validate())
}

func TestMarshalRedactsKey(t *testing.T) {
	cfg, err := Loader{getenv: noEnv}.Load("")
	require.NoError(t, err)
	cfg.API.APIKey = "secret"

	out, err := Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")
	assert.Contains(t, string(out), redacted)
	assert.Contains(t, string(out), "timeout: 10s")
	assert.Equal(t, "secret", cfg.API.APIKey, "caller's config is untouched")
}
