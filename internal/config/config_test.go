package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Config{
		DB:              "gamify.db",
		ScriptsDir:      "scripts",
		HistoryLimit:    100,
		MaxDepth:        16,
		MaxSteps:        1000,
		ReentrancyGuard: true,
		LogLevel:        "info",
		ServiceName:     "gamify",
	}, cfg)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("GAMIFY_DB", "/tmp/game.db")
	t.Setenv("GAMIFY_HISTORY_LIMIT", "20")
	t.Setenv("GAMIFY_LOG_LEVEL", "debug")
	t.Setenv("GAMIFY_OTLP_ENDPOINT", "http://localhost:4318")
	t.Setenv("GAMIFY_REENTRANCY_GUARD", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.ReentrancyGuard)
	assert.Equal(t, "/tmp/game.db", cfg.DB)
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.Equal(t, "http://localhost:4318", cfg.OTLPEndpoint)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_ParseError(t *testing.T) {
	t.Setenv("GAMIFY_MAX_DEPTH", "deep")

	_, err := Load()
	assert.ErrorContains(t, err, "parse env:")
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := map[string][2]string{
		"history": {"GAMIFY_HISTORY_LIMIT", "0"},
		"depth":   {"GAMIFY_MAX_DEPTH", "-1"},
		"steps":   {"GAMIFY_MAX_STEPS", "0"},
		"level":   {"GAMIFY_LOG_LEVEL", "loud"},
		"db":      {"GAMIFY_DB", " "},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.ErrorContains(t, err, kv[0])
		})
	}
}
