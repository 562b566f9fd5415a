package bigbuy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Version is reported in the default User-Agent.
const Version = "0.4.0"

// API roots.
const (
	ProductionURL = "https://api.bigbuy.eu/rest"
	SandboxURL    = "https://api.sandbox.bigbuy.eu/rest"
)

// Mode selects which BigBuy environment the client talks to.
type Mode string

const (
	// ModeSandbox targets the sandbox API
	ModeSandbox Mode = "sandbox"
	// ModeProduction targets the production API
	ModeProduction Mode = "production"
)

// Client represents a BigBuy API client
type Client struct {
	baseURL          string
	appKey           string
	userAgent        string
	httpClient       Doer
	retryOnRateLimit bool
	metrics          *metrics
	logger           zerolog.Logger
	now              func() time.Time
}

// NewClient creates a new BigBuy client
func NewClient(appKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if appKey == "" {
		return nil, fmt.Errorf("%w: app key is required", ErrInvalidConfig)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	baseURL := o.baseURL
	if baseURL == "" {
		switch o.mode {
		case ModeSandbox:
			baseURL = SandboxURL
		case ModeProduction:
			baseURL = ProductionURL
		default:
			return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, o.mode)
		}
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}
	if o.breaker != nil {
		httpClient = newBreakerDoer(httpClient, *o.breaker)
	}

	var m *metrics
	if o.registerer != nil {
		var err error
		if m, err = newMetrics(o.registerer); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	return &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		appKey:           appKey,
		userAgent:        o.userAgent,
		httpClient:       httpClient,
		retryOnRateLimit: o.retryOnRateLimit,
		metrics:          m,
		logger:           logger,
		now:              time.Now,
	}, nil
}

// String hides the app key.
func (c *Client) String() string {
	return fmt.Sprintf("<bigbuy %s>", c.baseURL)
}

// Dispatch sends one request to path (without the ".json" suffix) and
// returns the classified outcome. When the client retries on rate limits,
// a RateLimitError with a future reset time is waited out and the request
// sent exactly once more; the outcome of that second attempt is final.
func (c *Client) Dispatch(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	_, payload, err := c.dispatch(ctx, method, path, query, body)
	return payload, err
}

func (c *Client) dispatch(ctx context.Context, method, path string, query url.Values, body any) (*Response, json.RawMessage, error) {
	encoded, err := encodeBody(body)
	if err != nil {
		return nil, nil, err
	}

	resp, payload, err := c.send(ctx, method, path, query, encoded)
	var rateErr *RateLimitError
	if err == nil || !errors.As(err, &rateErr) {
		return resp, payload, err
	}

	if !c.retryOnRateLimit {
		c.logger.Warn().Str("path", path).Str("reset", rateErr.Reset).Msg("Rate limited by BigBuy")
		return resp, nil, err
	}

	wait, ok := rateErr.ResetTimedelta(c.now())
	if !ok {
		c.logger.Warn().Str("path", path).Str("reset", rateErr.Reset).
			Msg("Rate limited by BigBuy with no future reset time, not retrying")
		return resp, nil, err
	}

	c.logger.Warn().Str("path", path).Dur("wait", wait).Msg("Rate limited by BigBuy, waiting for reset")
	if err := sleepContext(ctx, wait); err != nil {
		return resp, nil, fmt.Errorf("waiting %s for rate limit reset: %w", wait, errors.Join(err, rateErr))
	}

	c.metrics.retried()
	return c.send(ctx, method, path, query, encoded)
}

// send performs a single HTTP round trip and classifies the response.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body []byte) (*Response, json.RawMessage, error) {
	endpoint := c.endpointURL(path, query)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.appKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}
	payload, err := Classify(resp)
	elapsed := time.Since(start)
	c.metrics.observe(method, elapsed, err)

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", elapsed).
		Str("class", classOf(err)).
		Msg("BigBuy API request")

	return resp, payload, err
}

func (c *Client) endpointURL(path string, query url.Values) string {
	endpoint := c.baseURL + "/" + strings.Trim(path, "/") + ".json"
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return data, nil
}

// sleepContext waits for d unless ctx is done first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	payload, err := c.Dispatch(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return err
	}
	return decode(payload, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := c.Dispatch(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	return decode(payload, out)
}

func decode(payload json.RawMessage, out any) error {
	if payload == nil || out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
