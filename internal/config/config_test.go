package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/huntgraph/internal/config"
	"github.com/gyaneshwarpardhi/huntgraph/internal/graph"
	"github.com/gyaneshwarpardhi/huntgraph/internal/render"
	"github.com/gyaneshwarpardhi/huntgraph/internal/viewstate"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, config.Validate(config.Default()))
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	loader, err := config.NewLoader(filepath.Join("..", "..", "configs", "huntgraph.yaml"))
	require.NoError(t, err)
	cfg := loader.Config()
	require.NoError(t, config.Validate(cfg))

	def := config.Default()
	assert.Equal(t, def.Server, cfg.Server)
	assert.Equal(t, def.Backend, cfg.Backend)
	assert.Equal(t, def.Feed.QueueSize, cfg.Feed.QueueSize)
	assert.ElementsMatch(t, def.Feed.Triggers, cfg.Feed.Triggers)
	assert.Equal(t, def.Render.Style(), cfg.Render.Style())

	state, err := cfg.Filters.InitialState()
	require.NoError(t, err)
	assert.Equal(t, viewstate.Initial(), state)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, "huntgraph.yaml", `
server:
  addr: ":9090"
backend:
  base_url: "http://api.internal:8000"
  breaker:
    min_requests: 10
feed:
  triggers: [strategy_stored, graph_reset]
render:
  label_max_runes: 12
  company_colors:
    Strike: "#ff0000"
filters:
  active: [Strike, Monitor]
`)
	l, err := config.NewLoader(path)
	require.NoError(t, err)
	cfg := l.Config()
	require.NoError(t, config.Validate(cfg))

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 10000, cfg.Server.ReadTimeoutMs, "unset keys keep defaults")
	assert.Equal(t, "/api/graph", cfg.Backend.GraphPath)
	assert.Equal(t, uint32(10), cfg.Backend.Breaker.MinRequests)
	assert.Equal(t, []string{"strategy_stored", "graph_reset"}, cfg.Feed.Triggers)

	style := cfg.Render.Style()
	assert.Equal(t, 12, style.LabelMaxRunes)
	assert.Equal(t, render.Color("#ff0000"), style.CompanyColor(graph.Strike))
	assert.Equal(t, render.DefaultStyle().CompanyColor(graph.Monitor), style.CompanyColor(graph.Monitor))

	st, err := cfg.Filters.InitialState()
	require.NoError(t, err)
	assert.Equal(t, graph.NewClassificationSet(graph.Strike, graph.Monitor), st.Active)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "huntgraph.toml", `
[server]
addr = ":7070"

[backend]
base_url = "http://localhost:9000"
timeout_ms = 2500

[feed]
enabled = false

[filters]
active = []
`)
	l, err := config.NewLoader(path)
	require.NoError(t, err)
	cfg := l.Config()
	require.NoError(t, config.Validate(cfg))

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 2500*time.Millisecond, cfg.Backend.BackendOptions().Timeout)
	assert.False(t, cfg.Feed.Enabled)

	st, err := cfg.Filters.InitialState()
	require.NoError(t, err)
	assert.True(t, st.Active.Empty(), "explicit empty list starts with no classification active")
}

func TestInitialStateDefaultsToAll(t *testing.T) {
	st, err := config.Default().Filters.InitialState()
	require.NoError(t, err)
	assert.Equal(t, viewstate.Initial(), st)
}

func TestLoadErrors(t *testing.T) {
	_, err := config.NewLoader(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = config.NewLoader(writeFile(t, "bad.yaml", "server: [unclosed"))
	assert.Error(t, err)

	_, err = config.NewLoader(writeFile(t, "bad.toml", "[server\naddr ="))
	assert.Error(t, err)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = ""
	cfg.Backend.BaseURL = "not a url"
	cfg.Backend.GraphPath = "api/graph"
	cfg.Backend.Breaker.FailureThreshold = 1.5
	cfg.Feed.URL = "http://localhost:8000/api/ws/feed"
	cfg.Feed.Triggers = []string{"strategy_stored", "lead_scored"}
	cfg.Render.StrategyColor = "indigo"
	cfg.Render.CompanyColors = map[string]string{"Acquired": "#123456"}
	cfg.Filters.Active = []string{"Strike", "Hot"}

	err := config.Validate(cfg)
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"config validation errors:",
		"server.addr: is required",
		"backend.base_url",
		"backend.graph_path: must start with \"/\"",
		"backend.breaker.failure_threshold: must be at most 1",
		"feed.url: scheme must be ws or wss",
		`feed.triggers[1]: unknown event kind "lead_scored"`,
		"render.strategy_color",
		`render.company_colors: unknown classification "Acquired"`,
		`filters.active[1]: unknown classification "Hot"`,
	} {
		assert.Contains(t, msg, want)
	}
}

func TestValidateFeedURLRequiredWhenEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Feed.URL = ""
	assert.ErrorContains(t, config.Validate(cfg), "feed.url: required")

	cfg.Feed.Enabled = false
	assert.NoError(t, config.Validate(cfg))
}

func TestReloadNotifiesCallbacks(t *testing.T) {
	path := writeFile(t, "huntgraph.yaml", "render:\n  font_size: 12\n")
	l, err := config.NewLoader(path)
	require.NoError(t, err)

	var got []float64
	l.OnChange(func(c *config.Config) { got = append(got, c.Render.FontSize) })

	require.NoError(t, os.WriteFile(path, []byte("render:\n  font_size: 16\n"), 0o644))
	cfg, err := l.Reload()
	require.NoError(t, err)
	assert.Equal(t, 16.0, cfg.Render.FontSize)
	assert.Equal(t, []float64{16}, got)
	assert.Same(t, cfg, l.Config())
}

func TestReloadRejectsInvalidConfig(t *testing.T) {
	path := writeFile(t, "huntgraph.yaml", "render:\n  font_size: 12\n")
	l, err := config.NewLoader(path)
	require.NoError(t, err)
	before := l.Config()

	calls := 0
	l.OnChange(func(*config.Config) { calls++ })

	require.NoError(t, os.WriteFile(path, []byte("render:\n  font_size: -1\n"), 0o644))
	cfg, err := l.Reload()
	assert.Nil(t, cfg)
	require.ErrorIs(t, err, config.ErrInvalid)
	assert.ErrorContains(t, err, "render.font_size")
	assert.Same(t, before, l.Config(), "previous config stays current")
	assert.Zero(t, calls)
}

func TestWatchHotReloads(t *testing.T) {
	path := writeFile(t, "huntgraph.yaml", "render:\n  label_max_runes: 10\n")
	l, err := config.NewLoader(path)
	require.NoError(t, err)

	changed := make(chan int, 8)
	l.OnChange(func(c *config.Config) { changed <- c.Render.LabelMaxRunes })

	stop, err := l.Watch()
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("render:\n  label_max_runes: 30\n"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case n := <-changed:
			if n == 30 {
				return
			}
		case <-deadline:
			t.Fatal("config change not observed")
		}
	}
}
