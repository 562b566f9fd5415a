package bigbuy

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	mode             Mode
	baseURL          string
	timeout          time.Duration
	httpClient       Doer
	retryOnRateLimit bool
	userAgent        string
	breaker          *BreakerSettings
	registerer       prometheus.Registerer
}

func defaultOptions() clientOptions {
	return clientOptions{
		mode:      ModeSandbox,
		timeout:   30 * time.Second,
		userAgent: "bigbuy-go/" + Version,
	}
}

// WithMode selects the sandbox or production API.
func WithMode(mode Mode) Option {
	return func(o *clientOptions) {
		o.mode = mode
	}
}

// WithBaseURL overrides the API root derived from the mode.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

// WithTimeout sets the HTTP client timeout. Ignored when WithHTTPClient is used.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(client Doer) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithRetryOnRateLimit makes the client wait for the rate limit window to
// reset and retry the request once.
func WithRetryOnRateLimit(retry bool) Option {
	return func(o *clientOptions) {
		o.retryOnRateLimit = retry
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithCircuitBreaker guards each endpoint with its own circuit breaker.
// https://github.com/sony/gobreaker
func WithCircuitBreaker(settings BreakerSettings) Option {
	return func(o *clientOptions) {
		o.breaker = &settings
	}
}

// WithMetrics registers the client's Prometheus collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *clientOptions) {
		o.registerer = reg
	}
}
