package engine

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/hdprman/engine/core"
	"github.com/spaghettifunk/hdprman/engine/prman"
)

type ApplicationConfig struct {
	// The application name used in log output.
	Name string `toml:"name"`
	// One of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
	// TOML scene description to render. Ignored when the game provides a stage.
	ScenePath string `toml:"scene"`
	// Reload the scene file when it changes on disk.
	WatchScene bool `toml:"watch_scene"`
	// Number of sync workers.
	Workers int `toml:"workers"`
	// Delay between frames, e.g. "40ms".
	FrameInterval string `toml:"frame_interval"`
	// Number of frames to run, 0 runs until cancelled.
	Frames int `toml:"frames"`
	// Upper bound of live renderer objects of each kind, 0 is unbounded.
	MaxRileyObjects uint32 `toml:"max_riley_objects"`

	Render prman.Config `toml:"render"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:          "hdPrman",
		LogLevel:      "info",
		Workers:       4,
		FrameInterval: "40ms",
		Render:        prman.DefaultConfig(),
	}
}

// LoadApplicationConfig reads a TOML config. Fields omitted from the file
// keep their defaults.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultApplicationConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.Frames < 0 {
		return fmt.Errorf("frames must be >= 0, got %d", c.Frames)
	}
	if _, err := c.frameInterval(); err != nil {
		return err
	}
	if _, err := c.logLevel(); err != nil {
		return err
	}
	return nil
}

func (c *ApplicationConfig) frameInterval() (time.Duration, error) {
	if c.FrameInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.FrameInterval)
	if err != nil {
		return 0, fmt.Errorf("frame_interval: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("frame_interval must not be negative, got %s", d)
	}
	return d, nil
}

func (c *ApplicationConfig) logLevel() (core.LogLevel, error) {
	if c.LogLevel == "" {
		return core.InfoLevel, nil
	}
	l, err := core.ParseLogLevel(c.LogLevel)
	if err != nil {
		return core.InfoLevel, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
