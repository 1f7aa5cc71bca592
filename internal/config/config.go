// Package config loads tadasana settings from defaults, an optional config
// file and TADASANA_* environment variables, and reads and writes the
// standalone scoring thresholds file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ayusman/tadasana/internal/capture"
	"github.com/ayusman/tadasana/internal/detector"
	"github.com/ayusman/tadasana/internal/pose"
)

// EnvPrefix is the prefix of environment overrides, e.g. TADASANA_ADDR.
const EnvPrefix = "TADASANA"

// File names inside the data directory.
const (
	DatabaseFile   = "tadasana.db"
	ThresholdsFile = "thresholds.yaml"
)

// DetectorConfig mirrors detector.Config with config-file tags.
type DetectorConfig struct {
	MinDetectionConfidence float64 `mapstructure:"min_detection_confidence"`
	MinTrackingConfidence  float64 `mapstructure:"min_tracking_confidence"`
	ModelComplexity        int     `mapstructure:"model_complexity"`
	SmoothLandmarks        bool    `mapstructure:"smooth_landmarks"`
}

// Config holds all runtime settings.
type Config struct {
	Addr       string          `mapstructure:"addr"`
	DataDir    string          `mapstructure:"data_dir"`
	CameraID   int             `mapstructure:"camera_id"`
	Mirror     bool            `mapstructure:"mirror"`
	LogLevel   string          `mapstructure:"log_level"`
	StaticDir  string          `mapstructure:"static_dir"`
	Tray       bool            `mapstructure:"tray"`
	Detector   DetectorConfig  `mapstructure:"detector"`
	Thresholds pose.Thresholds `mapstructure:"thresholds"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	d := detector.DefaultConfig()
	th := pose.DefaultThresholds()

	v.SetDefault("addr", ":8080")
	v.SetDefault("data_dir", "~/.tadasana")
	v.SetDefault("camera_id", 0)
	v.SetDefault("mirror", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("static_dir", "web")
	v.SetDefault("tray", false)

	v.SetDefault("detector.min_detection_confidence", d.MinDetectionConf)
	v.SetDefault("detector.min_tracking_confidence", d.MinTrackingConf)
	v.SetDefault("detector.model_complexity", d.ModelComplexity)
	v.SetDefault("detector.smooth_landmarks", d.SmoothLandmarks)

	v.SetDefault("thresholds.alignment_tolerance", th.AlignmentTolerance)
	v.SetDefault("thresholds.arm_extension", th.ArmExtension)
	v.SetDefault("thresholds.leg_symmetry", th.LegSymmetry)
	v.SetDefault("thresholds.bend_limit", th.BendLimit)
	v.SetDefault("thresholds.pass_score", th.PassScore)
	v.SetDefault("thresholds.min_visibility", th.MinVisibility)
}

// BindEnv makes every key overridable through TADASANA_* variables, with
// dots in nested keys written as underscores.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// New returns a viper instance with defaults and environment bindings.
// When file is non-empty it is read as the config file.
func New(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return v, nil
}

// Load decodes v into a Config, expands the data directory and overlays the
// thresholds file from the data directory when one exists.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	dir, err := expandHome(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.DataDir = dir

	if _, err := os.Stat(cfg.ThresholdsPath()); err == nil {
		th, err := LoadThresholds(cfg.ThresholdsPath())
		if err != nil {
			return nil, err
		}
		cfg.Thresholds = th
	}

	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}

	return &cfg, nil
}

// DBPath returns the SQLite database path.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, DatabaseFile)
}

// ThresholdsPath returns the thresholds file path.
func (c *Config) ThresholdsPath() string {
	return filepath.Join(c.DataDir, ThresholdsFile)
}

// DetectorConfig converts the detector section for the detector package.
func (c *Config) DetectorConfig() detector.Config {
	return detector.Config{
		MinDetectionConf: c.Detector.MinDetectionConfidence,
		MinTrackingConf:  c.Detector.MinTrackingConfidence,
		ModelComplexity:  c.Detector.ModelComplexity,
		SmoothLandmarks:  c.Detector.SmoothLandmarks,
	}
}

// CameraOptions converts the camera settings for the capture package.
func (c *Config) CameraOptions() capture.Options {
	opts := capture.DefaultOptions()
	opts.DeviceID = c.CameraID
	opts.Mirror = c.Mirror
	return opts
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
