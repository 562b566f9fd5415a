package bigbuy

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics is nil when the client was built without WithMetrics; every
// method is safe to call on a nil receiver.
type metrics struct {
	responses *prometheus.CounterVec
	retries   prometheus.Counter
	duration  *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	responses, err := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigbuy_responses_total",
			Help: "Total number of BigBuy responses by classification",
		},
		[]string{"class"},
	))
	if err != nil {
		return nil, err
	}

	retries, err := register(reg, prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bigbuy_rate_limit_retries_total",
			Help: "Total number of requests retried after a rate limit reset",
		},
	))
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bigbuy_request_duration_seconds",
			Help:    "BigBuy request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	))
	if err != nil {
		return nil, err
	}

	return &metrics{responses: responses, retries: retries, duration: duration}, nil
}

// register reuses an identical collector that another client already
// registered on the same registry.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *metrics) observe(method string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.responses.WithLabelValues(classOf(err)).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *metrics) retried() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

// classOf names the classification of a response outcome.
func classOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrProduct):
		return "product"
	case errors.Is(err, ErrRateLimit):
		return "rate_limit"
	case errors.Is(err, ErrResponse):
		return "response"
	case errors.Is(err, ErrServer):
		return "server"
	default:
		return "transport"
	}
}
