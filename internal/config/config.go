// Package config loads holdtalk settings from holdtalk.yaml and HOLDTALK_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jwulff/holdtalk/internal/capture"
	"github.com/jwulff/holdtalk/internal/db"
	"github.com/jwulff/holdtalk/internal/gesture"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. HOLDTALK_GESTURE_HOLD_DELAY.
const EnvPrefix = "HOLDTALK"

type Config struct {
	Gesture  GestureConfig  `mapstructure:"gesture"`
	Capture  CaptureConfig  `mapstructure:"capture"`
	Terminal TerminalConfig `mapstructure:"terminal"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
}

type GestureConfig struct {
	HoldDelay       time.Duration `mapstructure:"hold_delay" validate:"gt=0"`
	LockThreshold   float64       `mapstructure:"lock_threshold" validate:"lt=0"`
	CancelThreshold float64       `mapstructure:"cancel_threshold" validate:"lt=0"`
	Damping         float64       `mapstructure:"damping" validate:"gt=0,lte=1"`
}

type CaptureConfig struct {
	MinDuration  time.Duration `mapstructure:"min_duration" validate:"gt=0"`
	TickInterval time.Duration `mapstructure:"tick_interval" validate:"gt=0"`
	CallTimeout  time.Duration `mapstructure:"call_timeout" validate:"gt=0"`
}

// TerminalConfig sizes a character cell so mouse deltas map to pixels.
type TerminalConfig struct {
	CellWidthPx  int `mapstructure:"cell_width_px" validate:"gt=0"`
	CellHeightPx int `mapstructure:"cell_height_px" validate:"gt=0"`
}

type StorageConfig struct {
	NotesDir string `mapstructure:"notes_dir" validate:"required"`
	CacheDir string `mapstructure:"cache_dir" validate:"required"`
	DBPath   string `mapstructure:"db_path" validate:"required"`
}

type LogConfig struct {
	File       string `mapstructure:"file" validate:"required"`
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gt=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
}

// DefaultDir is where holdtalk.yaml and the notes database live.
func DefaultDir() string {
	return filepath.Dir(db.DefaultDBPath())
}

func cacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "holdtalk")
	}
	return filepath.Join(dir, "Holdtalk")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gesture.hold_delay", gesture.DefaultHoldDelay)
	v.SetDefault("gesture.lock_threshold", gesture.DefaultLockThreshold)
	v.SetDefault("gesture.cancel_threshold", gesture.DefaultCancelThreshold)
	v.SetDefault("gesture.damping", gesture.DefaultDamping)

	v.SetDefault("capture.min_duration", capture.DefaultMinDuration)
	v.SetDefault("capture.tick_interval", capture.DefaultTickInterval)
	v.SetDefault("capture.call_timeout", capture.DefaultCallTimeout)

	v.SetDefault("terminal.cell_width_px", 8)
	v.SetDefault("terminal.cell_height_px", 16)

	v.SetDefault("storage.notes_dir", filepath.Join(DefaultDir(), "notes"))
	v.SetDefault("storage.cache_dir", cacheDir())
	v.SetDefault("storage.db_path", db.DefaultDBPath())

	v.SetDefault("log.file", filepath.Join(cacheDir(), "holdtalk.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
}

// Load reads the config file at path. An empty path falls back to
// $HOLDTALK_CONFIG, then to holdtalk.yaml in DefaultDir, which may be absent.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("holdtalk")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// GestureSettings converts to the interpreter's thresholds.
func (c *Config) GestureSettings() gesture.Config {
	return gesture.Config{
		HoldDelay:       c.Gesture.HoldDelay,
		LockThreshold:   c.Gesture.LockThreshold,
		CancelThreshold: c.Gesture.CancelThreshold,
		Damping:         c.Gesture.Damping,
	}
}

// CaptureSettings converts to the controller's configuration.
func (c *Config) CaptureSettings() capture.Config {
	return capture.Config{
		Gesture:      c.GestureSettings(),
		MinDuration:  c.Capture.MinDuration,
		TickInterval: c.Capture.TickInterval,
		CallTimeout:  c.Capture.CallTimeout,
	}
}
