package prman

import (
	"slices"

	"github.com/spaghettifunk/hdprman/engine/math"
)

// PluginVelocityBlur is the scene index plugin that switches points to
// velocity-based motion blur.
const PluginVelocityBlur = "velocityBlur"

// MaxTimeSamples bounds the number of motion samples per primvar.
const MaxTimeSamples = 16

type Config struct {
	// Scene index plugins enabled for this session.
	SceneIndexPlugins []string `toml:"scene_index_plugins"`
	// Shutter interval, in frames relative to the current frame.
	ShutterOpen  float32 `toml:"shutter_open"`
	ShutterClose float32 `toml:"shutter_close"`
	// Number of motion samples taken across the shutter interval.
	MotionSamples int `toml:"motion_samples"`
	// Frames per second, used to turn velocities (units/s) into per-frame offsets.
	FPS float32 `toml:"fps"`
	// Reject empty prims and disagreeing point counts instead of forwarding them.
	StrictValidation bool `toml:"strict_validation"`
}

func DefaultConfig() Config {
	return Config{
		ShutterOpen:   0,
		ShutterClose:  0.5,
		MotionSamples: 2,
		FPS:           24,
	}
}

// HasSceneIndexPlugin reports whether the named plugin is enabled.
func (c Config) HasSceneIndexPlugin(name string) bool {
	return slices.Contains(c.SceneIndexPlugins, name)
}

func (c Config) VelocityBlur() bool {
	return c.HasSceneIndexPlugin(PluginVelocityBlur)
}

// Normalized returns a copy with out-of-range values brought back into range.
func (c Config) Normalized() Config {
	c.MotionSamples = math.Clamp(c.MotionSamples, 1, MaxTimeSamples)
	if c.FPS <= 0 {
		c.FPS = DefaultConfig().FPS
	}
	if c.ShutterClose < c.ShutterOpen {
		c.ShutterOpen, c.ShutterClose = c.ShutterClose, c.ShutterOpen
	}
	return c
}
