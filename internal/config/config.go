// Package config loads the bls CLI configuration from defaults, an optional
// YAML file and BLS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sternrassler/bls-client/pkg/client"
	"github.com/Sternrassler/bls-client/pkg/logging"
	"github.com/Sternrassler/bls-client/pkg/series"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, so api_key is read
// from BLS_API_KEY and redis.addr from BLS_REDIS_ADDR.
const EnvPrefix = "BLS"

// Load loads the configuration. An explicit configPath must exist; otherwise
// ./bls.yaml and ~/.config/bls/bls.yaml are tried and may be absent.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("bls")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "bls"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. Every key needs a default
// for AutomaticEnv to reach it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", client.DefaultBaseURL)
	v.SetDefault("user_agent", "bls-client/1.0")
	v.SetDefault("timeout", 30*time.Second)

	// Query defaults
	v.SetDefault("query.start_year", 0)
	v.SetDefault("query.end_year", 0)
	v.SetDefault("query.errors", string(series.PolicyRaise))

	// Redis defaults
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Logging defaults
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	if cfg.UserAgent == "" {
		return fmt.Errorf("user_agent is required")
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	if _, err := series.ParsePolicy(cfg.Query.Errors); err != nil {
		return fmt.Errorf("invalid query.errors: %w", err)
	}

	if cfg.Query.StartYear < 0 || cfg.Query.EndYear < 0 {
		return fmt.Errorf("query years must not be negative")
	}

	if cfg.Redis.DB < 0 {
		return fmt.Errorf("redis.db must be >= 0 (got %d)", cfg.Redis.DB)
	}

	if err := cfg.LoggingConfig().Validate(); err != nil {
		return fmt.Errorf("invalid logging: %w", err)
	}

	return nil
}

// Policy returns the configured empty-series policy.
func (c *Config) Policy() series.Policy {
	p, _ := series.ParsePolicy(c.Query.Errors)
	return p
}

// LoggingConfig converts the logging section for logging.Setup.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:   logging.LogLevel(strings.ToLower(c.Logging.Level)),
		Format:  logging.Format(strings.ToLower(c.Logging.Format)),
		NoColor: !c.Logging.Color,
		Output:  os.Stderr,
	}
}
