package bigbuy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	server, _ := rateLimitedServer(1, strconv.Itoa(testResetEpoch))
	defer server.Close()

	reg := prometheus.NewRegistry()
	client := newTestClient(t, server.URL, WithRetryOnRateLimit(true), WithMetrics(reg))
	clockBefore(client, 5*time.Millisecond)

	_, err := client.Dispatch(context.Background(), http.MethodGet, "catalog/languages", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(client.metrics.responses.WithLabelValues("rate_limit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(client.metrics.responses.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(client.metrics.retries))
	assert.Equal(t, 1, testutil.CollectAndCount(client.metrics.duration))
}

func TestMetricsSharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newTestClient(t, "http://localhost", WithMetrics(reg))
	second := newTestClient(t, "http://localhost", WithMetrics(reg))

	assert.Same(t, first.metrics.responses, second.metrics.responses)
}

func TestMetricsDisabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	assert.Nil(t, client.metrics)

	_, err := client.Dispatch(context.Background(), http.MethodGet, "catalog/languages", nil, nil)
	assert.NoError(t, err)
}

func TestClassOf(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{nil, "success"},
		{&ValidationError{}, "validation"},
		{&ProductError{}, "product"},
		{&RateLimitError{}, "rate_limit"},
		{&ResponseError{}, "response"},
		{&ServerError{}, "server"},
		{context.Canceled, "transport"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, classOf(tt.err))
		})
	}
}
