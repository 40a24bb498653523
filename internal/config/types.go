package config

import "time"

// Config represents the complete CLI configuration
type Config struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Query     QueryConfig   `mapstructure:"query"`
	Redis     RedisConfig   `mapstructure:"redis"`
	Logging   LoggingConfig `mapstructure:"logging"`
}

// QueryConfig holds defaults applied to every query
type QueryConfig struct {
	StartYear int    `mapstructure:"start_year"`
	EndYear   int    `mapstructure:"end_year"`
	Errors    string `mapstructure:"errors"`
}

// RedisConfig enables the shared daily quota tracker when Addr is set
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
