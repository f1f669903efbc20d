// Package config loads docsql settings from defaults, an optional config file
// and DOCSQL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// EnvPrefix is the environment variable prefix, e.g. DOCSQL_FORMAT
const EnvPrefix = "DOCSQL"

// ErrInvalidConfig is returned when a loaded setting is out of range
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the CLI settings
type Config struct {
	Format    string `mapstructure:"format"`
	Locale    string `mapstructure:"locale"`
	CacheSize int    `mapstructure:"cache_size"`
	LogLevel  string `mapstructure:"log_level"`
	Limit     int    `mapstructure:"limit"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Format:    "json",
		CacheSize: 128,
		LogLevel:  "warn",
	}
}

// Load reads the settings. path names an optional config file in any format
// viper understands; an empty path skips the file. Environment variables
// override the file and the file overrides the defaults.
func Load(path string) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("format", def.Format)
	v.SetDefault("locale", def.Locale)
	v.SetDefault("cache_size", def.CacheSize)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("limit", def.Limit)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("%w: limit must be non-negative, got %d", ErrInvalidConfig, c.Limit)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: cache_size must be non-negative, got %d", ErrInvalidConfig, c.CacheSize)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error", "none":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if _, err := c.LocaleTag(); err != nil {
		return err
	}
	return nil
}

// LocaleTag parses Locale. An empty locale is language.Und.
func (c Config) LocaleTag() (language.Tag, error) {
	if c.Locale == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und, fmt.Errorf("%w: locale %q: %v", ErrInvalidConfig, c.Locale, err)
	}
	return tag, nil
}
