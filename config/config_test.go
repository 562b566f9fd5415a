package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func validConfig() *Config {
	return &Config{
		BigBuy: BigBuyConfig{
			AppKey:  "valid-app-key",
			Mode:    "sandbox",
			Timeout: 30 * time.Second,
		},
		Concurrency: ConcurrencyConfig{BatchSize: 100, Workers: 4},
		Logging:     LoggingConfig{Level: "info", Format: "console"},
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
bigbuy:
  app_key: file-key
  mode: production
  timeout: 10s
  retry_on_rate_limit: true
  circuit_breaker:
    enabled: true
    consecutive_failures: 3
concurrency:
  workers: 8
filters:
  cheap: num(wholesalePrice) < 5
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.BigBuy.AppKey)
	assert.Equal(t, "production", cfg.BigBuy.Mode)
	assert.Equal(t, 10*time.Second, cfg.BigBuy.Timeout)
	assert.True(t, cfg.BigBuy.RetryOnRateLimit)
	assert.True(t, cfg.BigBuy.CircuitBreaker.Enabled)
	assert.Equal(t, uint32(3), cfg.BigBuy.CircuitBreaker.ConsecutiveFailures)
	assert.Equal(t, uint32(1), cfg.BigBuy.CircuitBreaker.MaxRequests)
	assert.Equal(t, 30*time.Second, cfg.BigBuy.CircuitBreaker.Timeout)
	assert.Equal(t, 100, cfg.Concurrency.BatchSize)
	assert.Equal(t, 8, cfg.Concurrency.Workers)
	assert.Equal(t, "num(wholesalePrice) < 5", cfg.Filters["cheap"])
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "bigbuy:\n  app_key: file-key\n")
	t.Setenv("BIGBUY_APP_KEY", "env-key")
	t.Setenv("BIGBUY_RETRY_ON_RATE_LIMIT", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.BigBuy.AppKey)
	assert.True(t, cfg.BigBuy.RetryOnRateLimit)
}

func TestLoadWithoutConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	t.Run("environment only", func(t *testing.T) {
		t.Setenv("BIGBUY_APP_KEY", "env-key")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "env-key", cfg.BigBuy.AppKey)
		assert.Equal(t, "sandbox", cfg.BigBuy.Mode)
		assert.Equal(t, 30*time.Second, cfg.BigBuy.Timeout)
	})

	t.Run("no app key", func(t *testing.T) {
		t.Setenv("BIGBUY_APP_KEY", "")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bigbuy.app_key")
	})

	t.Run("explicit path must exist", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "placeholder app key",
			mutate:  func(cfg *Config) { cfg.BigBuy.AppKey = "your-app-key-here" },
			wantErr: "bigbuy.app_key",
		},
		{
			name:    "unknown mode",
			mutate:  func(cfg *Config) { cfg.BigBuy.Mode = "staging" },
			wantErr: "invalid bigbuy.mode: staging",
		},
		{
			name:    "zero timeout",
			mutate:  func(cfg *Config) { cfg.BigBuy.Timeout = 0 },
			wantErr: "bigbuy.timeout",
		},
		{
			name: "breaker without threshold",
			mutate: func(cfg *Config) {
				cfg.BigBuy.CircuitBreaker = CircuitBreakerConfig{Enabled: true}
			},
			wantErr: "consecutive_failures",
		},
		{
			name:    "no workers",
			mutate:  func(cfg *Config) { cfg.Concurrency.Workers = 0 },
			wantErr: "concurrency.workers",
		},
		{
			name: "metrics without address",
			mutate: func(cfg *Config) {
				cfg.Metrics = MetricsConfig{Enabled: true}
			},
			wantErr: "metrics.listen",
		},
		{
			name:    "invalid logging level",
			mutate:  func(cfg *Config) { cfg.Logging.Level = "trace" },
			wantErr: "invalid logging level",
		},
		{
			name:    "invalid logging format",
			mutate:  func(cfg *Config) { cfg.Logging.Format = "xml" },
			wantErr: "invalid logging format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
