// Package config loads and validates AirSig's TOML configuration.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the full application configuration.
type Config struct {
	Brush     Brush     `toml:"brush"`
	Smoothing Smoothing `toml:"smoothing"`
	Gesture   Gesture   `toml:"gesture"`
	Camera    Camera    `toml:"camera"`
	Server    Server    `toml:"server"`
	Autosave  Autosave  `toml:"autosave"`
}

// Brush configures the drawing tool.
type Brush struct {
	Color   string  `toml:"color"`
	Size    int     `toml:"size"`
	Opacity float64 `toml:"opacity"`
}

// Smoothing configures fingertip stabilization.
type Smoothing struct {
	Enabled bool   `toml:"enabled"`
	Level   string `toml:"level"`
	// JitterThreshold overrides the level's built-in jitter gate when
	// positive; 0 keeps the level default.
	JitterThreshold int `toml:"jitter_threshold"`
}

// Gesture configures classification thresholds.
type Gesture struct {
	// PinchThreshold is the thumb-to-index pixel distance for pinch
	// detection; 0 keeps the built-in default.
	PinchThreshold float64 `toml:"pinch_threshold"`
}

// Camera configures capture and frame enhancement.
type Camera struct {
	Index    int  `toml:"index"`
	Width    int  `toml:"width"`
	Height   int  `toml:"height"`
	Mirror   bool `toml:"mirror"`
	LowLight bool `toml:"low_light"`
}

// Server configures the HTTP control surface.
type Server struct {
	Addr string `toml:"addr"`
}

// Autosave configures periodic project snapshots.
type Autosave struct {
	Enabled         bool `toml:"enabled"`
	IntervalSeconds int  `toml:"interval_seconds"`
	Keep            int  `toml:"keep"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Brush: Brush{
			Color:   "red",
			Size:    5,
			Opacity: 1.0,
		},
		Smoothing: Smoothing{
			Enabled: true,
			Level:   "medium",
		},
		Gesture: Gesture{},
		Camera: Camera{
			Index:  0,
			Width:  640,
			Height: 480,
			Mirror: true,
		},
		Server: Server{
			Addr: "127.0.0.1:8420",
		},
		Autosave: Autosave{
			Enabled:         true,
			IntervalSeconds: 60,
			Keep:            5,
		},
	}
}

// Load reads a TOML config file, layering it over the defaults. A
// missing file is not an error: the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the runtime cannot work with.
func (c *Config) Validate() error {
	if c.Brush.Size < 1 || c.Brush.Size > 100 {
		return fmt.Errorf("brush.size must be between 1 and 100, got %d", c.Brush.Size)
	}
	if c.Brush.Opacity < 0 || c.Brush.Opacity > 1 {
		return fmt.Errorf("brush.opacity must be between 0 and 1, got %f", c.Brush.Opacity)
	}
	switch c.Smoothing.Level {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("smoothing.level must be low, medium, or high, got %q", c.Smoothing.Level)
	}
	if c.Smoothing.JitterThreshold < 0 {
		return fmt.Errorf("smoothing.jitter_threshold must not be negative, got %d", c.Smoothing.JitterThreshold)
	}
	if c.Gesture.PinchThreshold < 0 {
		return fmt.Errorf("gesture.pinch_threshold must not be negative, got %f", c.Gesture.PinchThreshold)
	}
	if c.Camera.Index < 0 {
		return fmt.Errorf("camera.index must not be negative, got %d", c.Camera.Index)
	}
	if c.Camera.Width < 0 || c.Camera.Height < 0 {
		return fmt.Errorf("camera dimensions must not be negative, got %dx%d", c.Camera.Width, c.Camera.Height)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Autosave.IntervalSeconds < 1 {
		return fmt.Errorf("autosave.interval_seconds must be at least 1, got %d", c.Autosave.IntervalSeconds)
	}
	if c.Autosave.Keep < 1 {
		return fmt.Errorf("autosave.keep must be at least 1, got %d", c.Autosave.Keep)
	}
	return nil
}
