package bigbuy

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(r *http.Request) (*http.Response, error)
}

// BreakerSettings configures the per-endpoint circuit breakers.
type BreakerSettings struct {
	MaxRequests         uint32
	ConsecutiveFailures uint32
	Interval            time.Duration
	Timeout             time.Duration
}

// breakerDoer trips on transport errors and 5xx responses. A 5xx still
// reaches the caller as a response so the classifier sees its body.
type breakerDoer struct {
	next     Doer
	settings BreakerSettings
	breakers sync.Map
}

func newBreakerDoer(next Doer, settings BreakerSettings) *breakerDoer {
	return &breakerDoer{next: next, settings: settings}
}

// serverFault carries a 5xx response through gobreaker as a failure.
type serverFault struct {
	resp *http.Response
}

func (e *serverFault) Error() string {
	return fmt.Sprintf("upstream status %d", e.resp.StatusCode)
}

func (d *breakerDoer) Do(r *http.Request) (*http.Response, error) {
	cb := d.breaker(resourceName(r))
	resp, err := cb.Execute(func() (*http.Response, error) {
		resp, err := d.next.Do(r)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &serverFault{resp: resp}
		}
		return resp, nil
	})
	var fault *serverFault
	if errors.As(err, &fault) {
		return fault.resp, nil
	}
	return resp, err
}

func (d *breakerDoer) breaker(resource string) *gobreaker.CircuitBreaker[*http.Response] {
	if cb, ok := d.breakers.Load(resource); ok {
		return cb.(*gobreaker.CircuitBreaker[*http.Response])
	}
	cb, _ := d.breakers.LoadOrStore(resource, gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        fmt.Sprintf("bigbuy circuit breaker for resource %s", resource),
		MaxRequests: d.settings.MaxRequests,
		Interval:    d.settings.Interval,
		Timeout:     d.settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= d.settings.ConsecutiveFailures
		},
	}))
	return cb.(*gobreaker.CircuitBreaker[*http.Response])
}

func resourceName(r *http.Request) string {
	return r.Method + "_" + r.URL.Path
}
