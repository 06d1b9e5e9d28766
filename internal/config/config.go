// Package config loads gqlcheck settings.
//
// Precedence, highest first: command-line flags bound with BindPFlag,
// GQLCHECK_* environment variables, the config file (gqlcheck.yaml in the
// working directory, or the file named by --config), then defaults.
//
// Nested keys map to environment variables with dots replaced by
// underscores: history.path is GQLCHECK_HISTORY_PATH.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "GQLCHECK"

	// FileName is the config file searched for without --config.
	FileName = "gqlcheck"

	FormatText = "text"
	FormatJSON = "json"

	defaultHistoryPath = ".gqlcheck/history.db"
)

// Keys shared by flags, environment and file.
const (
	KeyFormat         = "format"
	KeyLogLevel       = "log_level"
	KeyParallel       = "parallel"
	KeyHistoryEnabled = "history.enabled"
	KeyHistoryPath    = "history.path"
	KeyGoldenDir      = "golden.dir"
)

// Config is the resolved gqlcheck configuration.
type Config struct {
	Format   string        `mapstructure:"format"`
	LogLevel string        `mapstructure:"log_level"`
	Parallel int           `mapstructure:"parallel"`
	History  HistoryConfig `mapstructure:"history"`
	Golden   GoldenConfig  `mapstructure:"golden"`

	// File is the config file that was read, empty if none.
	File string `mapstructure:"-"`
}

// HistoryConfig controls run recording.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// GoldenConfig controls where golden snapshots live. An empty Dir keeps
// them in a golden/ directory next to each suite.
type GoldenConfig struct {
	Dir string `mapstructure:"dir"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *Config {
	return &Config{
		Format:   FormatText,
		LogLevel: "warn",
		Parallel: 1,
		History:  HistoryConfig{Path: defaultHistoryPath},
	}
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault(KeyFormat, d.Format)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyParallel, d.Parallel)
	v.SetDefault(KeyHistoryEnabled, d.History.Enabled)
	v.SetDefault(KeyHistoryPath, d.History.Path)
	v.SetDefault(KeyGoldenDir, d.Golden.Dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file and resolves the configuration. A non-empty
// file must exist. Otherwise gqlcheck.yaml is looked up in dirs (default
// the working directory) and a missing file is not an error.
func Load(v *viper.Viper, file string, dirs ...string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		if len(dirs) == 0 {
			dirs = []string{"."}
		}
		for _, d := range dirs {
			v.AddConfigPath(d)
		}
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("invalid format %q (want text or json)", c.Format)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history.path is required when history is enabled")
	}
	return nil
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log_level %q", s)
	}
	return l, nil
}
