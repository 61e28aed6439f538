package codeboard

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfigOverrides(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
[window]
title = "asteroids"
width = 320
height = 240

[loop]
tick_rate = "16ms"
max_delta = "100ms"

[game]
background = "#102030"
pixel_perfect = true

[audio]
enabled = false
sample_rate = 0

[logging]
level = "debug"
format = "json"
`))
	require.NoError(t, err)
	assert.Equal(t, "asteroids", cfg.Window.Title)
	assert.Equal(t, 320, cfg.Window.Width)
	assert.Equal(t, 1.0, cfg.Window.Scale, "unset keys keep their defaults")
	assert.Equal(t, 16*time.Millisecond, cfg.Loop.TickRate)
	assert.Equal(t, 100*time.Millisecond, cfg.Loop.MaxDelta)
	assert.True(t, cfg.Game.PixelPerfect)
	assert.False(t, cfg.Audio.Enabled)
	assert.Equal(t, "json", cfg.Logging.Format)

	bg, err := cfg.Game.BackgroundColor()
	require.NoError(t, err)
	assert.Equal(t, "#102030", bg.Hex())
}

func TestConfigValidateReportsEverything(t *testing.T) {
	_, err := ParseConfig([]byte(`
[window]
width = 0
scale = -1.0
[loop]
tick_rate = "-1s"
delta_mod = -2.0
[game]
background = "purple"
[audio]
sample_rate = 0
`))
	require.Error(t, err)
	for _, want := range []string{"window size", "window scale", "tick_rate", "delta_mod", "invalid hex color", "sample_rate"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestParseConfigSyntaxError(t *testing.T) {
	_, err := ParseConfig([]byte("[window\nwidth = 1"))
	assert.ErrorContains(t, err, "parse config")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codeboard.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\nwidth = 640\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Window.Width)

	_, err = LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.ErrorContains(t, err, "read config")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[window]\nwidth = -5\n"), 0o644))
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, "bad.toml")
}

func TestEmptyBackgroundMeansNone(t *testing.T) {
	c, err := GameConfig{}.BackgroundColor()
	require.NoError(t, err)
	assert.True(t, c.IsZero())
}

func TestNewLoggerToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")
	log, err := NewLogger(LoggingConfig{Level: "warn", Format: "json", File: path})
	require.NoError(t, err)
	log.Info("quiet")
	log.Warn("loud", zap.Int("n", 1))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"loud"`)
	assert.NotContains(t, string(data), "quiet")
}

func TestNewLoggerBadLevelFallsBack(t *testing.T) {
	log, err := NewLogger(LoggingConfig{Level: "chatty", Format: "console"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.InfoLevel))
	assert.False(t, log.Core().Enabled(zap.DebugLevel))
}

func TestGuard(t *testing.T) {
	log, logs := observedLogger(zap.ErrorLevel)
	assert.True(t, guard(log, "task", "a", func() {}))
	assert.False(t, guard(log, "task", "b", func() { panic("oops") }))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "b", fields["id"])
	assert.Equal(t, "oops", fields["panic"])
	assert.Contains(t, fields, "stack")
}
