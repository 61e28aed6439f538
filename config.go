package codeboard

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the engine's file configuration.
type Config struct {
	Window  WindowConfig  `toml:"window"`
	Loop    LoopConfig    `toml:"loop"`
	Game    GameConfig    `toml:"game"`
	Audio   AudioConfig   `toml:"audio"`
	Logging LoggingConfig `toml:"logging"`
	Debug   DebugConfig   `toml:"debug"`
}

type WindowConfig struct {
	Title  string  `toml:"title"`
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Scale  float64 `toml:"scale"` // window pixels per canvas pixel
}

type LoopConfig struct {
	TickRate time.Duration `toml:"tick_rate"` // fixed step for the default layer; 0 = variable
	DeltaMod float64       `toml:"delta_mod"`
	MaxDelta time.Duration `toml:"max_delta"` // clamp after long stalls
}

type GameConfig struct {
	Background   string `toml:"background"` // hex color
	PixelPerfect bool   `toml:"pixel_perfect"`
}

type AudioConfig struct {
	Enabled    bool    `toml:"enabled"`
	SampleRate int     `toml:"sample_rate"`
	Volume     float64 `toml:"volume"` // gain exponent offset applied to every sound
}

type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // console, json
	File   string `toml:"file"`   // log to this file instead of stderr
}

type DebugConfig struct {
	Enabled       bool `toml:"enabled"`
	StatsInterval int  `toml:"stats_interval"` // frames between stats lines
	ShowFPS       bool `toml:"show_fps"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "codeboard",
			Width:  800,
			Height: 600,
			Scale:  1,
		},
		Loop: LoopConfig{
			DeltaMod: 1,
			MaxDelta: 250 * time.Millisecond,
		},
		Game: GameConfig{
			Background: "#000000",
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Debug: DebugConfig{
			StatsInterval: 60,
		},
	}
}

// LoadConfig reads a TOML file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes TOML over the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.Scale <= 0 {
		errs = append(errs, fmt.Errorf("window scale %v must be positive", c.Window.Scale))
	}
	if c.Loop.TickRate < 0 {
		errs = append(errs, fmt.Errorf("tick_rate %v must not be negative", c.Loop.TickRate))
	}
	if c.Loop.DeltaMod < 0 {
		errs = append(errs, fmt.Errorf("delta_mod %v must not be negative", c.Loop.DeltaMod))
	}
	if _, err := c.Game.BackgroundColor(); err != nil {
		errs = append(errs, err)
	}
	if c.Audio.Enabled && c.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample_rate %d must be positive", c.Audio.SampleRate))
	}
	return errors.Join(errs...)
}

// BackgroundColor parses the background hex color. Empty means none.
func (g GameConfig) BackgroundColor() (Color, error) {
	if g.Background == "" {
		return Color{}, nil
	}
	return HexColor(g.Background)
}
