package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/fixity/pkg/fixity/logging"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// HistoryConfig configures the run history store.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	Baseline struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"baseline"`
	Exclude []string      `mapstructure:"exclude"`
	Workers int           `mapstructure:"workers"`
	History HistoryConfig `mapstructure:"history"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// New returns a viper instance with fixity's search paths, environment
// binding and defaults applied. Callers may bind flags to it before Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())

	v.SetEnvPrefix("FIXITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("baseline.path", DefaultBaselinePath())
	v.SetDefault("exclude", DefaultExclusions)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", DefaultHistoryPath())
	v.SetDefault("history.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", DefaultLogMaxSize)
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"engine":   "info",
		"walker":   "info",
		"snapshot": "info",
		"history":  "info",
	})
}

// LoadFrom reads configuration through v, which should come from New. When
// file is non-empty it replaces the search path and must exist; otherwise
// a missing config file is not an error.
func LoadFrom(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var err error
	if cfg.Baseline.Path, err = ExpandPath(cfg.Baseline.Path); err != nil {
		return nil, err
	}
	if cfg.History.Path, err = ExpandPath(cfg.History.Path); err != nil {
		return nil, err
	}
	if cfg.Logging.Path, err = ExpandPath(cfg.Logging.Path); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Defaults returns the built-in configuration, ignoring files and
// environment.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// LoggingConfig converts the logging section into a logging.Config.
func (c *Config) LoggingConfig() (logging.Config, error) {
	out := logging.DefaultConfig()
	if c.Logging.Level != "" {
		out.Level = c.Logging.Level
	}
	if c.Logging.Path != "" {
		out.Path = c.Logging.Path
	}
	out.Components = c.Logging.Components

	r := c.Logging.Rotation
	if r.MaxSize != "" {
		size, err := humanize.ParseBytes(r.MaxSize)
		if err != nil {
			return out, fmt.Errorf("invalid logging.rotation.max_size %q: %w", r.MaxSize, err)
		}
		out.Rotation.MaxSize = int64(size)
	}
	out.Rotation.MaxAge = r.MaxAge
	out.Rotation.MaxBackups = r.MaxBackups
	out.Rotation.Daily = r.Daily

	return out, nil
}

// ConfigDir returns $XDG_CONFIG_HOME/fixity.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "fixity")
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns $XDG_DATA_HOME/fixity for the baseline and history.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "fixity")
}

// DefaultBaselinePath returns the default baseline file location.
func DefaultBaselinePath() string {
	return filepath.Join(DataDir(), DefaultBaselineFile)
}

// DefaultHistoryPath returns the default run history directory.
func DefaultHistoryPath() string {
	return filepath.Join(DataDir(), "history")
}

// WriteDefault writes a commented config file to path if none exists and
// reports whether it wrote one.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`# fixity configuration

baseline:
  # Where the baseline is stored (FIXITY_BASELINE_PATH overrides)
  path: %s

# Patterns skipped during the walk. A pattern matches an entry's base
# name or full path; a matching directory is skipped with its contents.
exclude: []
#  - .git
#  - "*.swp"

# Directory walker workers (0 picks automatically)
workers: %d

# Audit trail of baseline and verify runs
history:
  enabled: true
  path: %s
  retention_days: %d

logging:
  # Log level: debug, info, warn, error
  level: info
  # Empty means $XDG_STATE_HOME/fixity/fixity.log
  path: ""
  rotation:
    max_size: %s
    max_age: 30       # days
    max_backups: 5
    daily: true
  components:
    engine: info
    walker: info
`, DefaultBaselinePath(), DefaultWorkers, DefaultHistoryPath(), DefaultRetentionDays, DefaultLogMaxSize)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}
	return true, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}
