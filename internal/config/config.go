package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/tomato/internal/store"
	"github.com/spf13/viper"
)

// Config represents the complete tomato configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Timezone string         `mapstructure:"timezone"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	TUI      TUIConfig      `mapstructure:"tui"`
}

type DatabaseConfig struct {
	// Path is the SQLite database file
	Path string `mapstructure:"path"`
}

// DefaultsConfig is the configuration given to sessions created without explicit values
type DefaultsConfig struct {
	WorkMinutes       int `mapstructure:"work_minutes"`
	ShortBreakMinutes int `mapstructure:"short_break_minutes"`
	LongBreakMinutes  int `mapstructure:"long_break_minutes"`
	LongBreakInterval int `mapstructure:"long_break_interval"`
}

type LoggingConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR
	Level string `mapstructure:"level"`
	// File receives JSON log lines; empty means stderr
	File string `mapstructure:"file"`
}

// TUIConfig controls the terminal UI behavior
type TUIConfig struct {
	// AutoComplete completes the running phase when its countdown reaches zero
	AutoComplete bool `mapstructure:"auto_complete"`
	// AutoStartNext starts the recommended phase right after a completion
	AutoStartNext bool `mapstructure:"auto_start_next"`
}

// SessionConfig converts the defaults into a store session configuration.
func (d DefaultsConfig) SessionConfig() store.SessionConfig {
	return store.SessionConfig{
		WorkMinutes:       d.WorkMinutes,
		ShortBreakMinutes: d.ShortBreakMinutes,
		LongBreakMinutes:  d.LongBreakMinutes,
		LongBreakInterval: d.LongBreakInterval,
	}
}

// Location resolves Timezone; "" and "Local" mean the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(ConfigDir(), "tomato.db"),
		},
		Defaults: DefaultsConfig{
			WorkMinutes:       25,
			ShortBreakMinutes: 5,
			LongBreakMinutes:  15,
			LongBreakInterval: 4,
		},
		Timezone: "Local",
		Logging: LoggingConfig{
			Level: "INFO",
			File:  filepath.Join(ConfigDir(), "tomato.log"),
		},
		TUI: TUIConfig{
			AutoComplete:  true,
			AutoStartNext: false,
		},
	}
}

// SetDefaults registers every default with viper so they apply without a config file
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("database.path", defaults.Database.Path)

	viper.SetDefault("defaults.work_minutes", defaults.Defaults.WorkMinutes)
	viper.SetDefault("defaults.short_break_minutes", defaults.Defaults.ShortBreakMinutes)
	viper.SetDefault("defaults.long_break_minutes", defaults.Defaults.LongBreakMinutes)
	viper.SetDefault("defaults.long_break_interval", defaults.Defaults.LongBreakInterval)

	viper.SetDefault("timezone", defaults.Timezone)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)

	viper.SetDefault("tui.auto_complete", defaults.TUI.AutoComplete)
	viper.SetDefault("tui.auto_start_next", defaults.TUI.AutoStartNext)
}

// Load reads the configuration from viper into a Config struct and validates it
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

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tomato")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tomato"
	}
	return filepath.Join(home, ".config", "tomato")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
