package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
// Pointer fields distinguish "unset" from a legitimate zero value.
type FileConfig struct {
	CameraID *int  `toml:"camera_id"`
	Width    int   `toml:"width"`
	Height   int   `toml:"height"`
	FPS      int   `toml:"fps"`
	Preview  *bool `toml:"preview"`

	MaxHands               int      `toml:"max_hands"`
	MinDetectionConfidence *float64 `toml:"min_detection_confidence"`
	MinTrackingConfidence  *float64 `toml:"min_tracking_confidence"`

	Listen    *string `toml:"listen"`
	StaticDir string  `toml:"static_dir"`

	DataDir       string `toml:"data_dir"`
	PluginDir     string `toml:"plugin_dir"`
	PluginTimeout string `toml:"plugin_timeout"`

	Tray *bool `toml:"tray"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.mudra/config.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".mudra", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setIntPtr("camera", fc.CameraID, &cfg.CameraID)
	s.setInt("width", fc.Width, &cfg.Width)
	s.setInt("height", fc.Height, &cfg.Height)
	s.setInt("fps", fc.FPS, &cfg.FPS)
	s.setBool("preview", fc.Preview, &cfg.Preview)

	s.setInt("max-hands", fc.MaxHands, &cfg.MaxHands)
	s.setFloatPtr("min-detection-confidence", fc.MinDetectionConfidence, &cfg.MinDetectionConfidence)
	s.setFloatPtr("min-tracking-confidence", fc.MinTrackingConfidence, &cfg.MinTrackingConfidence)

	s.setStringPtr("listen", fc.Listen, &cfg.Listen)
	s.setString("static-dir", fc.StaticDir, &cfg.StaticDir)

	s.setString("data-dir", fc.DataDir, &cfg.DataDir)
	s.setString("plugin-dir", fc.PluginDir, &cfg.PluginDir)
	if err := s.setDuration("plugin-timeout", fc.PluginTimeout, &cfg.PluginTimeout); err != nil {
		return err
	}

	s.setBool("tray", fc.Tray, &cfg.Tray)

	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
