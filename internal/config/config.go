// Package config holds the mudra runtime configuration and its file, env and
// flag layers.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "MUDRA_"

// DefaultListen is the default HTTP listen address.
const DefaultListen = ":8080"

// Config holds the runtime configuration for mudra.
type Config struct {
	CameraID int
	Width    int
	Height   int
	FPS      int
	Preview  bool

	MaxHands               int
	MinDetectionConfidence float64
	MinTrackingConfidence  float64

	// Listen is the HTTP address; empty disables the server.
	Listen    string
	StaticDir string

	DataDir       string
	PluginDir     string
	PluginTimeout time.Duration

	Tray bool

	LogLevel  string
	LogFormat string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		CameraID:               0,
		Width:                  640,
		Height:                 480,
		FPS:                    30,
		Preview:                true,
		MaxHands:               1,
		MinDetectionConfidence: 0.7,
		MinTrackingConfidence:  0.7,
		Listen:                 DefaultListen,
		DataDir:                DefaultDataDir(),
		PluginDir:              "", // Derived from DataDir during Validate
		PluginTimeout:          5 * time.Second,
		LogLevel:               "info",
		LogFormat:              FormatConsole,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.CameraID < 0 {
		return fmt.Errorf("camera id must not be negative")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("frame size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive")
	}
	if c.MaxHands < 1 {
		return fmt.Errorf("max hands must be at least 1")
	}
	if c.MinDetectionConfidence < 0 || c.MinDetectionConfidence > 1 {
		return fmt.Errorf("min detection confidence must be in [0,1], got %v", c.MinDetectionConfidence)
	}
	if c.MinTrackingConfidence < 0 || c.MinTrackingConfidence > 1 {
		return fmt.Errorf("min tracking confidence must be in [0,1], got %v", c.MinTrackingConfidence)
	}
	if c.PluginTimeout <= 0 {
		return fmt.Errorf("plugin timeout must be positive")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data-dir is required")
	}
	if c.PluginDir == "" {
		c.PluginDir = filepath.Join(c.DataDir, "plugins")
	}

	// The tray owns the main thread and HighGUI windows cannot live elsewhere.
	if c.Tray {
		c.Preview = false
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case FormatConsole, FormatJSON:
	default:
		return fmt.Errorf("log format must be %q or %q, got %q", FormatConsole, FormatJSON, c.LogFormat)
	}

	return nil
}

// DatabasePath returns the sqlite file inside DataDir.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "mudra.db")
}

// FrameInterval is the pause between frames at the configured rate.
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// DefaultDataDir returns ~/.mudra, or .mudra when the home directory is unknown.
func DefaultDataDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".mudra")
	}
	return ".mudra"
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStringPtr sets a string from a pointer, allowing the empty string.
func (s *configSetter) setStringPtr(flag string, value *string, dst *string) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntPtr sets an int from a pointer, allowing zero.
func (s *configSetter) setIntPtr(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setFloatPtr sets a float64 from a pointer, allowing zero.
func (s *configSetter) setFloatPtr(flag string, value *float64, dst *float64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setDurationPtr sets a duration from a pointer if not nil and flag not changed.
func (s *configSetter) setDurationPtr(flag string, value *time.Duration, dst *time.Duration) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}
