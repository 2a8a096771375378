// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Tally struct {
		Host           string `mapstructure:"host" yaml:"host"`
		Port           int    `mapstructure:"port" yaml:"port"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		Company        string `mapstructure:"company" yaml:"company"`
	} `mapstructure:"tally" yaml:"tally"`

	Cache struct {
		// Path is a local directory, or an rpc:// URL for a remote
		// cache filesystem. Empty disables caching.
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"cache" yaml:"cache"`

	CSV struct {
		Delimiter      string `mapstructure:"delimiter" yaml:"delimiter"`
		IncludeHeaders bool   `mapstructure:"include_headers" yaml:"include_headers"`
	} `mapstructure:"csv" yaml:"csv"`
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Tally.TimeoutSeconds) * time.Second
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.tally-connect")
	v.AddConfigPath(".tally-connect")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("TALLY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
		// Config file not found or invalid is OK, we'll use defaults and env vars
	}

	// 5. Short env aliases matching common deployment variables
	if err := v.BindEnv("tally.host", "TALLY_HOST"); err != nil {
		fmt.Printf("Warning: failed to bind TALLY_HOST environment variable: %v\n", err)
	}
	if err := v.BindEnv("tally.port", "TALLY_PORT"); err != nil {
		fmt.Printf("Warning: failed to bind TALLY_PORT environment variable: %v\n", err)
	}
	if err := v.BindEnv("cache.path", "TALLY_CACHE"); err != nil {
		fmt.Printf("Warning: failed to bind TALLY_CACHE environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Tally endpoint defaults
	v.SetDefault("tally.host", "localhost")
	v.SetDefault("tally.port", 9002)
	v.SetDefault("tally.timeout_seconds", 30)
	v.SetDefault("tally.company", "")

	// Cache defaults
	v.SetDefault("cache.path", "")

	// CSV export defaults
	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.include_headers", true)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	// Validate endpoint
	if config.Tally.Host == "" {
		return fmt.Errorf("tally.host must not be empty")
	}
	if config.Tally.Port < 1 || config.Tally.Port > 65535 {
		return fmt.Errorf("tally.port must be between 1 and 65535, got: %d", config.Tally.Port)
	}
	if config.Tally.TimeoutSeconds < 1 || config.Tally.TimeoutSeconds > 600 {
		return fmt.Errorf("tally.timeout_seconds must be between 1 and 600, got: %d", config.Tally.TimeoutSeconds)
	}

	// Validate CSV delimiter
	if len(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	// Parse and set log level
	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Configure log format
	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
