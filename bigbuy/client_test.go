package bigbuy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testResetEpoch = 2000000000

func newTestClient(t *testing.T, serverURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithBaseURL(serverURL)}, opts...)
	client, err := NewClient("test-key", zerolog.Nop(), opts...)
	require.NoError(t, err)
	return client
}

// clockBefore makes the client believe the reset is wait away.
func clockBefore(c *Client, wait time.Duration) {
	c.now = func() time.Time {
		return time.Unix(testResetEpoch, 0).Add(-wait)
	}
}

// rateLimitedServer answers 429 to the first limited calls, then 200.
func rateLimitedServer(limited int32, reset string) (*httptest.Server, *atomic.Int32) {
	var calls atomic.Int32
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n <= limited {
			if reset != "" {
				w.Header().Set(RateLimitResetHeader, reset)
			}
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"code":429,"message":"Too Many Requests"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})), &calls
}

func TestNewClient(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name    string
		appKey  string
		opts    []Option
		wantURL string
		wantErr bool
	}{
		{
			name:    "sandbox by default",
			appKey:  "key",
			wantURL: SandboxURL,
		},
		{
			name:    "production",
			appKey:  "key",
			opts:    []Option{WithMode(ModeProduction)},
			wantURL: ProductionURL,
		},
		{
			name:    "base URL override",
			appKey:  "key",
			opts:    []Option{WithBaseURL("http://localhost:8080/rest/")},
			wantURL: "http://localhost:8080/rest",
		},
		{
			name:    "missing app key",
			wantErr: true,
		},
		{
			name:    "unknown mode",
			appKey:  "key",
			opts:    []Option{WithMode("staging")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.appKey, logger, tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, client.baseURL)
			assert.NotContains(t, client.String(), tt.appKey)
		})
	}
}

func TestClientOptions(t *testing.T) {
	t.Run("with timeout", func(t *testing.T) {
		client := newTestClient(t, "http://localhost", WithTimeout(5*time.Second))
		assert.Equal(t, 5*time.Second, client.httpClient.(*http.Client).Timeout)
	})

	t.Run("with custom http client", func(t *testing.T) {
		custom := &http.Client{Timeout: 10 * time.Second}
		client := newTestClient(t, "http://localhost", WithHTTPClient(custom))
		assert.Equal(t, custom, client.httpClient)
	})

	t.Run("with circuit breaker", func(t *testing.T) {
		client := newTestClient(t, "http://localhost", WithCircuitBreaker(BreakerSettings{ConsecutiveFailures: 3}))
		assert.IsType(t, &breakerDoer{}, client.httpClient)
	})
}

func TestDispatchRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/catalog/productsstockbyreference.json", r.URL.Path)
		assert.Equal(t, "es", r.URL.Query().Get("isoCode"))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "bigbuy-go/"+Version, r.Header.Get("User-Agent"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"sku":"S1"}`, string(body))

		_, _ = w.Write([]byte(`[{"sku":"S1"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	payload, err := client.Dispatch(context.Background(), http.MethodPost, "/catalog/productsstockbyreference/",
		url.Values{"isoCode": {"es"}}, map[string]string{"sku": "S1"})

	require.NoError(t, err)
	assert.JSONEq(t, `[{"sku":"S1"}]`, string(payload))
}

func TestDispatchEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	payload, err := client.Dispatch(context.Background(), http.MethodGet, "order/addresses/new", nil, nil)

	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestRetryOnRateLimit(t *testing.T) {
	reset := strconv.Itoa(testResetEpoch)

	tests := []struct {
		name      string
		retry     bool
		limited   int32
		reset     string
		wait      time.Duration
		wantCalls int32
		wantErr   bool
	}{
		{
			name:      "no rate limit",
			retry:     true,
			limited:   0,
			reset:     reset,
			wait:      20 * time.Millisecond,
			wantCalls: 1,
		},
		{
			name:      "retry disabled",
			retry:     false,
			limited:   1,
			reset:     reset,
			wait:      20 * time.Millisecond,
			wantCalls: 1,
			wantErr:   true,
		},
		{
			name:      "one rate limit then success",
			retry:     true,
			limited:   1,
			reset:     reset,
			wait:      20 * time.Millisecond,
			wantCalls: 2,
		},
		{
			name:      "two rate limits",
			retry:     true,
			limited:   2,
			reset:     reset,
			wait:      20 * time.Millisecond,
			wantCalls: 2,
			wantErr:   true,
		},
		{
			name:      "reset already elapsed",
			retry:     true,
			limited:   1,
			reset:     reset,
			wait:      -time.Second,
			wantCalls: 1,
			wantErr:   true,
		},
		{
			name:      "no reset header",
			retry:     true,
			limited:   1,
			wantCalls: 1,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, calls := rateLimitedServer(tt.limited, tt.reset)
			defer server.Close()

			client := newTestClient(t, server.URL, WithRetryOnRateLimit(tt.retry))
			clockBefore(client, tt.wait)

			start := time.Now()
			payload, err := client.Dispatch(context.Background(), http.MethodGet, "catalog/languages", nil, nil)
			elapsed := time.Since(start)

			assert.Equal(t, tt.wantCalls, calls.Load())
			if tt.wantErr {
				var rateErr *RateLimitError
				require.ErrorAs(t, err, &rateErr)
				assert.Nil(t, payload)
			} else {
				require.NoError(t, err)
				assert.JSONEq(t, `{"ok":true}`, string(payload))
			}
			if tt.wantCalls == 2 {
				assert.GreaterOrEqual(t, elapsed, tt.wait)
			}
			if !tt.retry {
				assert.Less(t, elapsed, time.Second)
			}
		})
	}
}

func TestRetryOnRateLimitCancelled(t *testing.T) {
	server, calls := rateLimitedServer(1, strconv.Itoa(testResetEpoch))
	defer server.Close()

	client := newTestClient(t, server.URL, WithRetryOnRateLimit(true))
	clockBefore(client, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := client.Dispatch(ctx, http.MethodGet, "catalog/languages", nil, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	var rateErr *RateLimitError
	assert.ErrorAs(t, err, &rateErr)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryResendsBody(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"order":{"internalReference":"R1","language":"es","paymentMethod":"moneybox","carriers":null,"shippingAddress":{"firstName":"","lastName":"","country":"","postcode":"","town":"","address":"","phone":"","email":"","comment":""},"products":null}}`, string(body))
		if calls.Add(1) == 1 {
			w.Header().Set(RateLimitResetHeader, strconv.Itoa(testResetEpoch))
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"totalAmount": 12.5}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, WithRetryOnRateLimit(true))
	clockBefore(client, 10*time.Millisecond)

	result, err := client.CheckOrder(context.Background(), &Order{InternalReference: "R1", Language: "es", PaymentMethod: "moneybox"})

	require.NoError(t, err)
	assert.Equal(t, 12.5, result["totalAmount"])
	assert.Equal(t, int32(2), calls.Load())
}

func TestTransportErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client := newTestClient(t, serverURL)
	_, err := client.Dispatch(context.Background(), http.MethodGet, "catalog/languages", nil, nil)

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrAPI))
	assert.Contains(t, err.Error(), "request failed")
}

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/order/create.json", r.URL.Path)
		var envelope map[string]json.RawMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))
		assert.Contains(t, envelope, "order")

		w.Header().Set("Location", "/rest/order/123456")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	created, err := client.CreateOrder(context.Background(), &Order{InternalReference: "R1"})

	require.NoError(t, err)
	assert.Equal(t, "/rest/order/123456", created.Location)
	assert.Equal(t, "123456", created.ID)
}

func TestOrderRequired(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Location", "/rest/order/1")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	created, err := client.CreateOrder(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, created)

	checked, err := client.CheckOrder(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, checked)

	assert.Equal(t, int32(0), calls.Load())
}

func TestCreateOrderProductsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":409,"message":"{\"info\":\"Products error.\",\"data\":[{\"sku\":\"S5001344\",\"message\":\"Inactive product.\"}]}"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.CreateOrder(context.Background(), &Order{InternalReference: "R1"})

	var productErr *ProductError
	require.ErrorAs(t, err, &productErr)
	assert.Equal(t, []string{"S5001344"}, productErr.SKUs())
}

func TestGetTrackingOrders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tracking/orders.json", r.URL.Path)
		var payload struct {
			Track struct {
				Orders []struct {
					ID string `json:"id"`
				} `json:"orders"`
			} `json:"track"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Len(t, payload.Track.Orders, 3)

		_, _ = w.Write([]byte(`[{"id": 3, "trackings": [{"trackingNumber": "T3"}]}, {"id": "1", "trackings": []}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ids := []string{"1", "2", "3"}

	t.Run("match IDs", func(t *testing.T) {
		trackings, err := client.GetTrackingOrders(context.Background(), ids, true)
		require.NoError(t, err)
		require.Len(t, trackings, 3)
		assert.Equal(t, "1", trackings[0].ID.String())
		assert.Nil(t, trackings[1])
		assert.Equal(t, "T3", trackings[2].Trackings[0]["trackingNumber"])
	})

	t.Run("upstream order", func(t *testing.T) {
		trackings, err := client.GetTrackingOrders(context.Background(), ids, false)
		require.NoError(t, err)
		require.Len(t, trackings, 2)
		assert.Equal(t, "3", trackings[0].ID.String())
	})
}

func TestGetLowestShippingCostByCountry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shipping/lowest-shipping-cost-by-country.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"shippingCost": "4.3", "carrier": {"id": "43", "name": "Chrono"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	cost, err := client.GetLowestShippingCostByCountry(context.Background(), "V1300179", "ES")

	require.NoError(t, err)
	assert.Equal(t, "4.3", cost.ShippingCost.String())
	assert.Equal(t, "Chrono", cost.Carrier.Name)
}

func TestGetLowestShippingCostsHeadersInBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shipping/lowest-shipping-costs-by-country/ES.json", r.URL.Path)
		_, _ = w.Write([]byte("HTTP/1.0 500 Internal Server Error\r\nContent-Type:  application/json\r\n\r\n" +
			`{"error":"Information is not available right now. Try it again later"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.GetLowestShippingCostsByCountry(context.Background(), "ES")

	assert.True(t, IsServer(err))
	assert.Contains(t, err.Error(), "not available right now")
}

func TestProductStockTotalQuantity(t *testing.T) {
	ps := ProductStock{Stocks: []Stock{{Quantity: 3}, {Quantity: 4}}}
	assert.Equal(t, 7, ps.TotalQuantity())
}

func TestNewCreatedOrder(t *testing.T) {
	assert.Equal(t, "42", newCreatedOrder("https://api.bigbuy.eu/rest/order/42.json").ID)
	assert.Equal(t, "", newCreatedOrder("").ID)
}
