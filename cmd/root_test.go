package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/propdash/internal/config"
	"github.com/oakwood-commons/propdash/internal/fixture"
	"github.com/oakwood-commons/propdash/internal/source"
)

type reportJSON struct {
	Summary []struct {
		Label string `json:"label"`
		Value string `json:"value"`
	} `json:"summary"`
	Sections []struct {
		Title string `json:"title"`
		Rows  []struct {
			Key     string `json:"key"`
			Display string `json:"display"`
		} `json:"rows"`
	} `json:"sections"`
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{config.EnvAPIBaseURL, config.EnvAPIKey, config.EnvAPITimeout, config.EnvAddr, config.EnvLocale, config.EnvCacheTTL} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func decode(t *testing.T, out string) reportJSON {
	t.Helper()
	var r reportJSON
	require.NoError(t, json.Unmarshal([]byte(out), &r), out)
	return r
}

func TestReportDemoJSON(t *testing.T) {
	isolateEnv(t)
	out, err := execute(t, "", "report", "--demo", "-o", "json")
	require.NoError(t, err)

	r := decode(t, out)
	require.Len(t, r.Summary, 5)
	assert.Equal(t, "Lot Area Sqm", r.Summary[0].Label)
	assert.Equal(t, "1,450", r.Summary[0].Value)
	titles := []string{}
	for _, s := range r.Sections {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{"Overview", "Zoning", "Lot", "Overlays", "Nearby", "Council"}, titles)
}

func TestReportDemoTableDefault(t *testing.T) {
	isolateEnv(t)
	out, err := execute(t, "", "report", "--demo", "--width", "100")
	require.NoError(t, err)
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "Median Processing Days")
}

func TestReportFileTree(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "property.yaml")
	require.NoError(t, os.WriteFile(path, []byte("address: 1 Test Road\nlot:\n  areaSqm: 512\n  corner: false\n"), 0o600))

	out, err := execute(t, "", "report", path, "-o", "tree")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Report\n"), out)
	assert.Contains(t, out, "Area Sqm: 512")
	assert.Contains(t, out, "Corner: false")
}

func TestReportStdin(t *testing.T) {
	isolateEnv(t)
	out, err := execute(t, `{"b":{"x":2000},"a":"first"}`, "report", "-", "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "- **B X**: 2,000")
	assert.Less(t, strings.Index(out, "## Overview"), strings.Index(out, "## B"))
}

func TestReportSearch(t *testing.T) {
	isolateEnv(t)
	out, err := execute(t, "", "report", "--demo", "--search", "heritage", "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "## Overlays")
	assert.NotContains(t, out, "## Zoning")
}

func TestReportExpression(t *testing.T) {
	isolateEnv(t)
	out, err := execute(t, "", "report", "--demo", "-e", "_.zoning", "-o", "json")
	require.NoError(t, err)
	r := decode(t, out)
	require.Len(t, r.Sections, 1)
	assert.Equal(t, "Overview", r.Sections[0].Title)
	assert.Len(t, r.Sections[0].Rows, 4)

	_, err = execute(t, "", "report", "--demo", "-e", "_.(")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expression")
}

func TestReportInputErrors(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "", "report")
	assert.ErrorIs(t, err, errNoInput)

	_, err = execute(t, "", "report", "--demo", "-o", "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")

	_, err = execute(t, "", "report", "--lat", "-33.8")
	assert.Error(t, err)

	_, err = execute(t, "", "report", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = execute(t, "", "--log-level", "loud", "report", "--demo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--log-level")
}

func TestReportRemoteQuery(t *testing.T) {
	isolateEnv(t)
	var gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/property" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.Header.Get("X-API-Key")
		_, _ = w.Write(fixture.DemoJSON())
	}))
	defer srv.Close()
	t.Setenv(config.EnvAPIBaseURL, srv.URL)
	t.Setenv(config.EnvAPIKey, "k-123")

	out, err := execute(t, "", "report", "-q", "123 Harbour Street", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "123 Harbour Street", gotQuery)
	assert.Equal(t, "k-123", gotKey)
	assert.Equal(t, "1,450", decode(t, out).Summary[0].Value)
}

func TestReportRemoteNotFound(t *testing.T) {
	isolateEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()
	t.Setenv(config.EnvAPIBaseURL, srv.URL)

	_, err := execute(t, "", "report", "--lat", "-33.8688", "--lng", "151.2093")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No property matched")

	var statusErr *source.StatusError
	assert.ErrorAs(t, err, &statusErr)
}

func TestReportLocaleFromConfig(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[display]\nlocale = \"de-DE\"\n"), 0o600))

	out, err := execute(t, "", "--config-file", path, "report", "--demo", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "1.450", decode(t, out).Summary[0].Value)
}

func TestConfigCommand(t *testing.T) {
	isolateEnv(t)
	t.Setenv(config.EnvAPIKey, "super-secret")

	out, err := execute(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "base_url: https://api.example.com")
	assert.Contains(t, out, "ttl: 10m0s")
	assert.NotContains(t, out, "super-secret")

	out, err = execute(t, "", "config", "--defaults")
	require.NoError(t, err)
	assert.Equal(t, string(config.DefaultConfigYAML()), out)
}

func TestVersionCommand(t *testing.T) {
	isolateEnv(t)
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "propdash "), out)

	out, err = execute(t, "", "version", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "go_version:")
}

func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Empty(t, resolveConfigPath(""))
	assert.Equal(t, "explicit.yaml", resolveConfigPath("explicit.yaml"))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "propdash"), 0o755))
	want := filepath.Join(dir, "propdash", "config.toml")
	require.NoError(t, os.WriteFile(want, []byte(""), 0o600))
	assert.Equal(t, want, resolveConfigPath(""))
}

func TestSnakeCaseFlags(t *testing.T) {
	isolateEnv(t)
	out, err := execute(t, "", "--log_level", "error", "report", "--demo", "-o", "json")
	require.NoError(t, err)
	assert.Len(t, decode(t, out).Summary, 5)
}
