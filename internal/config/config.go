// Package config holds the engine's tunable settings: the batch scheduler
// frame interval and logging output. Settings load from a TOML file with
// environment overrides; missing files fall back to defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Environment variables overriding file values.
const (
	EnvLogLevel      = "PRISM_LOG_LEVEL"
	EnvLogFile       = "PRISM_LOG_FILE"
	EnvFrameInterval = "PRISM_FRAME_INTERVAL_MS"
)

// Config is the engine configuration.
type Config struct {
	Renderer RendererConfig `toml:"renderer"`
	Log      LogConfig      `toml:"log"`
}

// RendererConfig tunes the render side.
type RendererConfig struct {
	// FrameIntervalMS is the batch scheduler's coalescing window in
	// milliseconds.
	FrameIntervalMS int `toml:"frame_interval_ms"`
}

// LogConfig tunes logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// File is the log destination path. Empty logs to stderr.
	File string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Renderer: RendererConfig{FrameIntervalMS: 16},
		Log:      LogConfig{Level: "info"},
	}
}

// FrameInterval returns the renderer frame interval as a duration.
func (c Config) FrameInterval() time.Duration {
	return time.Duration(c.Renderer.FrameIntervalMS) * time.Millisecond
}

// Load reads configuration from a TOML file, applies environment
// overrides, and validates the result. A missing file is not an error; the
// defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err != nil && os.IsNotExist(err):
			// Defaults apply.
		case err != nil:
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the configuration.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv(EnvFrameInterval); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.Renderer.FrameIntervalMS = ms
		}
	}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.Renderer.FrameIntervalMS <= 0 {
		return fmt.Errorf("%w: frame_interval_ms must be positive, got %d",
			ErrInvalidValue, c.Renderer.FrameIntervalMS)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidValue, c.Log.Level)
	}
	return nil
}
