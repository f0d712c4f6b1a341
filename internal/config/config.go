// Package config holds posthub's settings and loads them through viper.
//
// Values come, in increasing precedence, from the built-in defaults, the
// config file, POSTHUB_* environment variables and command-line flags.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete posthub configuration
type Config struct {
	// Root is the directory holding every user's mailbox and the roster.
	Root string `mapstructure:"root" yaml:"root"`
	// Roster is the roster file; relative paths resolve against Root.
	Roster string `mapstructure:"roster" yaml:"roster"`

	Delivery DeliveryConfig `mapstructure:"delivery" yaml:"delivery"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// DeliveryConfig controls the delivery engine
type DeliveryConfig struct {
	// MaxIDAttempts bounds how many message names are tried before a delivery
	// gives up with an exhausted identifier space (1..256).
	MaxIDAttempts int `mapstructure:"max_id_attempts" yaml:"max_id_attempts"`
	// FileMode is the permission for delivered files, as an octal string.
	FileMode string `mapstructure:"file_mode" yaml:"file_mode"`
}

// DisplayConfig controls human-oriented output such as `posthub status`
type DisplayConfig struct {
	// Color is "auto" (style only when stdout is a terminal), "always" or "never".
	Color string `mapstructure:"color" yaml:"color"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled turns on structured logging (default: false)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level" yaml:"level"`
	// File is the log destination; empty means stderr
	File string `mapstructure:"file" yaml:"file"`
	// MaxSizeMB is the size at which the log file is rotated
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files to keep
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated files
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// DefaultRoot is the mailbox root used when nothing overrides it.
const DefaultRoot = "./POSTHUB"

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Root:   DefaultRoot,
		Roster: "users.txt",
		Delivery: DeliveryConfig{
			MaxIDAttempts: 256,
			FileMode:      "0644",
		},
		Display: DisplayConfig{
			Color: "auto",
		},
		Logging: LoggingConfig{
			Enabled:    false,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// RosterPath returns the roster location, resolving a relative Roster
// against Root.
func (c *Config) RosterPath() string {
	if filepath.IsAbs(c.Roster) {
		return c.Roster
	}
	return filepath.Join(c.Root, c.Roster)
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("root", defaults.Root)
	viper.SetDefault("roster", defaults.Roster)

	viper.SetDefault("delivery.max_id_attempts", defaults.Delivery.MaxIDAttempts)
	viper.SetDefault("delivery.file_mode", defaults.Delivery.FileMode)

	viper.SetDefault("display.color", defaults.Display.Color)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// Load reads the configuration from viper and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the directory searched for config.yaml
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "posthub")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".posthub"
	}
	return filepath.Join(home, ".config", "posthub")
}

// ConfigFile returns the default config file path
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
