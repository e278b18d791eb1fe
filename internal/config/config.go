// Package config loads runtime configuration for the wizard binary.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	Storage    StorageConfig `mapstructure:"storage"`
	API        APIConfig     `mapstructure:"api"`
	Metrics    MetricsConfig `mapstructure:"metrics"`
	Logging    LoggingConfig `mapstructure:"logging"`
	TuningPath string        `mapstructure:"tuning_path"`
}

// StorageConfig selects the save backend.
type StorageConfig struct {
	// sqlite, file or memory
	Backend string `mapstructure:"backend" validate:"required,oneof=sqlite file memory"`

	// Database file for sqlite, directory for file. Ignored for memory.
	Path string `mapstructure:"path" validate:"required_unless=Backend memory"`
}

// APIConfig controls the optional local HTTP surface.
type APIConfig struct {
	Enabled   bool            `mapstructure:"enabled"`
	Addr      string          `mapstructure:"addr" validate:"required_if=Enabled true"`
	AdminKey  string          `mapstructure:"admin_key"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig is a per-client token bucket for POST endpoints.
type RateLimitConfig struct {
	Requests float64 `mapstructure:"requests" validate:"gt=0"`
	Burst    int     `mapstructure:"burst" validate:"min=1"`
}

// MetricsConfig toggles the prometheus registry.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads configuration with priority env > config file > defaults. A
// missing config file is not an error; .env is loaded when present.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("wizard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("WIZARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	SetDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	SetDefaults(cfg)
	return cfg
}
