package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "airsig.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "red", cfg.Brush.Color)
	assert.Equal(t, 5, cfg.Brush.Size)
	assert.Equal(t, "medium", cfg.Smoothing.Level)
	assert.True(t, cfg.Camera.Mirror)
	assert.Equal(t, 60, cfg.Autosave.IntervalSeconds)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialOverridesLayerOverDefaults(t *testing.T) {
	path := writeConfig(t, `
[brush]
color = "cyan"
size = 12

[smoothing]
level = "high"
jitter_threshold = 10

[camera]
low_light = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "cyan", cfg.Brush.Color)
	assert.Equal(t, 12, cfg.Brush.Size)
	assert.InDelta(t, 1.0, cfg.Brush.Opacity, 1e-9, "unset opacity keeps default")
	assert.Equal(t, "high", cfg.Smoothing.Level)
	assert.Equal(t, 10, cfg.Smoothing.JitterThreshold)
	assert.True(t, cfg.Camera.LowLight)
	assert.Equal(t, "127.0.0.1:8420", cfg.Server.Addr, "unset server keeps default")
}

func TestLoad_RejectsMalformedTOML(t *testing.T) {
	path := writeConfig(t, `brush = [unclosed`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero brush size", func(c *Config) { c.Brush.Size = 0 }},
		{"oversized brush", func(c *Config) { c.Brush.Size = 500 }},
		{"opacity above one", func(c *Config) { c.Brush.Opacity = 1.5 }},
		{"unknown smoothing level", func(c *Config) { c.Smoothing.Level = "extreme" }},
		{"negative jitter", func(c *Config) { c.Smoothing.JitterThreshold = -1 }},
		{"negative pinch threshold", func(c *Config) { c.Gesture.PinchThreshold = -2 }},
		{"negative camera index", func(c *Config) { c.Camera.Index = -1 }},
		{"empty server addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero autosave interval", func(c *Config) { c.Autosave.IntervalSeconds = 0 }},
		{"zero autosave keep", func(c *Config) { c.Autosave.Keep = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
