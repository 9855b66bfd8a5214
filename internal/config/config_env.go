package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvConfig is the MUDRA_* environment layer. Nil fields were not set.
type EnvConfig struct {
	CameraID *int  `env:"CAMERA_ID"`
	Width    *int  `env:"WIDTH"`
	Height   *int  `env:"HEIGHT"`
	FPS      *int  `env:"FPS"`
	Preview  *bool `env:"PREVIEW"`

	MaxHands               *int     `env:"MAX_HANDS"`
	MinDetectionConfidence *float64 `env:"MIN_DETECTION_CONFIDENCE"`
	MinTrackingConfidence  *float64 `env:"MIN_TRACKING_CONFIDENCE"`

	Listen    *string `env:"LISTEN"`
	StaticDir *string `env:"STATIC_DIR"`

	DataDir       *string        `env:"DATA_DIR"`
	PluginDir     *string        `env:"PLUGIN_DIR"`
	PluginTimeout *time.Duration `env:"PLUGIN_TIMEOUT"`

	Tray *bool `env:"TRAY"`

	LogLevel  *string `env:"LOG_LEVEL"`
	LogFormat *string `env:"LOG_FORMAT"`
}

// ParseEnv loads MUDRA_* environment variables into target.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ApplyEnvConfig applies configuration from environment variables (MUDRA_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	var ec EnvConfig
	if err := ParseEnv(&ec); err != nil {
		return err
	}

	s := newConfigSetter(changed)

	s.setIntPtr("camera", ec.CameraID, &cfg.CameraID)
	s.setIntPtr("width", ec.Width, &cfg.Width)
	s.setIntPtr("height", ec.Height, &cfg.Height)
	s.setIntPtr("fps", ec.FPS, &cfg.FPS)
	s.setBool("preview", ec.Preview, &cfg.Preview)

	s.setIntPtr("max-hands", ec.MaxHands, &cfg.MaxHands)
	s.setFloatPtr("min-detection-confidence", ec.MinDetectionConfidence, &cfg.MinDetectionConfidence)
	s.setFloatPtr("min-tracking-confidence", ec.MinTrackingConfidence, &cfg.MinTrackingConfidence)

	s.setStringPtr("listen", ec.Listen, &cfg.Listen)
	s.setStringPtr("static-dir", ec.StaticDir, &cfg.StaticDir)

	s.setStringPtr("data-dir", ec.DataDir, &cfg.DataDir)
	s.setStringPtr("plugin-dir", ec.PluginDir, &cfg.PluginDir)
	s.setDurationPtr("plugin-timeout", ec.PluginTimeout, &cfg.PluginTimeout)

	s.setBool("tray", ec.Tray, &cfg.Tray)

	s.setStringPtr("log-level", ec.LogLevel, &cfg.LogLevel)
	s.setStringPtr("log-format", ec.LogFormat, &cfg.LogFormat)

	return nil
}
