package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "graph-explorer/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setAPIEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GRAPH_SOURCE", "api")
	t.Setenv("API_URL", "http://localhost:9000/graph")
	t.Setenv("API_KEY", "key")
	t.Setenv("API_TOKEN", "token")
}

func TestLoad_Defaults(t *testing.T) {
	setAPIEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, SourceAPI, cfg.GraphSource)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "9693", cfg.InitialQuery)
	assert.Equal(t, "Publication", cfg.InitialNodeType)
	assert.Equal(t, 10000, cfg.LabelViewLimit)
	assert.Equal(t, 0, cfg.PlacementMaxAttempts)
	assert.Equal(t, StrategyTyped, cfg.StyleStrategy)
}

func TestLoad_Overrides(t *testing.T) {
	setAPIEnv(t)
	t.Setenv("FETCH_TIMEOUT", "2s")
	t.Setenv("SETTLE_DELAY", "0s")
	t.Setenv("PLACEMENT_MAX_ATTEMPTS", "5")
	t.Setenv("BREAKER_FAILURE_THRESHOLD", "0.9")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.FetchTimeout)
	assert.Equal(t, time.Duration(0), cfg.SettleDelay)
	assert.Equal(t, 5, cfg.PlacementMaxAttempts)
	assert.InDelta(t, 0.9, cfg.BreakerFailureThreshold, 1e-9)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			GraphSource:             SourceAPI,
			APIURL:                  "http://x",
			APIKey:                  "k",
			APIToken:                "t",
			FetchTimeout:            time.Second,
			BreakerFailureThreshold: 0.5,
			StyleStrategy:           StrategyTyped,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid api", func(c *Config) {}, ""},
		{"missing api url", func(c *Config) { c.APIURL = "" }, "API_URL"},
		{"missing api key", func(c *Config) { c.APIKey = "" }, "API_KEY"},
		{"missing api token", func(c *Config) { c.APIToken = "" }, "API_TOKEN"},
		{"neo4j ignores api vars", func(c *Config) {
			c.GraphSource = SourceNeo4j
			c.APIURL = ""
			c.Neo4jURI, c.Neo4jUser, c.Neo4jPassword = "bolt://x", "neo4j", "pw"
		}, ""},
		{"neo4j missing password", func(c *Config) {
			c.GraphSource = SourceNeo4j
			c.Neo4jURI, c.Neo4jUser = "bolt://x", "neo4j"
		}, "NEO4J_PASSWORD"},
		{"unknown source", func(c *Config) { c.GraphSource = "gremlin" }, "GRAPH_SOURCE"},
		{"passthrough strategy", func(c *Config) { c.StyleStrategy = StrategyPassthrough }, ""},
		{"unknown strategy", func(c *Config) { c.StyleStrategy = "geo" }, "STYLE_STRATEGY"},
		{"zero timeout", func(c *Config) { c.FetchTimeout = 0 }, "FETCH_TIMEOUT"},
		{"negative attempts", func(c *Config) { c.PlacementMaxAttempts = -1 }, "PLACEMENT_MAX_ATTEMPTS"},
		{"threshold out of range", func(c *Config) { c.BreakerFailureThreshold = 1.5 }, "BREAKER_FAILURE_THRESHOLD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConfig))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestLoadTheme(t *testing.T) {
	theme, err := LoadTheme("")
	require.NoError(t, err)
	assert.Empty(t, theme.TypeColors)

	path := filepath.Join(t.TempDir(), "theme.yaml")
	content := `
type_colors:
  Venue: "#123456"
palette: ["#000001", "#000002"]
fallback_start: 1
sizes:
  Venue: 40
default_size: 30
relationship:
  width: 3
  caption: RELATED
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	theme, err = LoadTheme(path)
	require.NoError(t, err)
	assert.Equal(t, "#123456", theme.TypeColors["Venue"])
	assert.Equal(t, []string{"#000001", "#000002"}, theme.Palette)
	require.NotNil(t, theme.FallbackStart)
	assert.Equal(t, 1, *theme.FallbackStart)
	assert.Equal(t, 40.0, theme.Sizes["Venue"])
	assert.Equal(t, 30.0, theme.DefaultSize)
	assert.Equal(t, 3.0, theme.Relationship.Width)
	assert.Equal(t, "RELATED", theme.Relationship.Caption)
}

func TestLoadTheme_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadTheme(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("palette: [\"\"]\n"), 0o644))
	_, err = LoadTheme(bad)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConfig))
}
