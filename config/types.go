package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	BigBuy      BigBuyConfig      `mapstructure:"bigbuy"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Filters     FilterConfig      `mapstructure:"filters"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// BigBuyConfig holds BigBuy API connection details
type BigBuyConfig struct {
	AppKey           string               `mapstructure:"app_key"`
	Mode             string               `mapstructure:"mode"`
	BaseURL          string               `mapstructure:"base_url"`
	Timeout          time.Duration        `mapstructure:"timeout"`
	RetryOnRateLimit bool                 `mapstructure:"retry_on_rate_limit"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// CircuitBreakerConfig configures the per-endpoint circuit breakers
type CircuitBreakerConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	MaxRequests         uint32        `mapstructure:"max_requests"`
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures"`
	Interval            time.Duration `mapstructure:"interval"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// ConcurrencyConfig controls batched stock lookups
type ConcurrencyConfig struct {
	BatchSize int `mapstructure:"batch_size"`
	Workers   int `mapstructure:"workers"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// FilterConfig maps preset names to filter expressions
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
