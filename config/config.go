package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads the configuration. Without an explicit path a missing config
// file is not an error: defaults and BIGBUY_* environment variables apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".bigbuy"))
		}
		v.AddConfigPath("/etc/bigbuy/")
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

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. Every key is given a
// default so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// BigBuy defaults
	v.SetDefault("bigbuy.app_key", "")
	v.SetDefault("bigbuy.mode", "sandbox")
	v.SetDefault("bigbuy.base_url", "")
	v.SetDefault("bigbuy.timeout", 30*time.Second)
	v.SetDefault("bigbuy.retry_on_rate_limit", false)

	v.SetDefault("bigbuy.circuit_breaker.enabled", false)
	v.SetDefault("bigbuy.circuit_breaker.max_requests", 1)
	v.SetDefault("bigbuy.circuit_breaker.consecutive_failures", 5)
	v.SetDefault("bigbuy.circuit_breaker.interval", time.Minute)
	v.SetDefault("bigbuy.circuit_breaker.timeout", 30*time.Second)

	// Concurrency defaults
	v.SetDefault("concurrency.batch_size", 100)
	v.SetDefault("concurrency.workers", 4)

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", ":9090")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.BigBuy.AppKey == "" || cfg.BigBuy.AppKey == "your-app-key-here" {
		return fmt.Errorf("bigbuy.app_key must be set to a valid app key (or BIGBUY_APP_KEY)")
	}

	if cfg.BigBuy.Mode != "sandbox" && cfg.BigBuy.Mode != "production" {
		return fmt.Errorf("invalid bigbuy.mode: %s (must be 'sandbox' or 'production')", cfg.BigBuy.Mode)
	}

	if cfg.BigBuy.Timeout <= 0 {
		return fmt.Errorf("bigbuy.timeout must be positive")
	}

	if cfg.BigBuy.CircuitBreaker.Enabled && cfg.BigBuy.CircuitBreaker.ConsecutiveFailures == 0 {
		return fmt.Errorf("bigbuy.circuit_breaker.consecutive_failures must be at least 1")
	}

	if cfg.Concurrency.BatchSize <= 0 {
		return fmt.Errorf("concurrency.batch_size must be positive")
	}
	if cfg.Concurrency.Workers <= 0 {
		return fmt.Errorf("concurrency.workers must be positive")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return fmt.Errorf("metrics.listen is required when metrics are enabled")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
