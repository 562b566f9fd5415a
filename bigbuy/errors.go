package bigbuy

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid bigbuy configuration")
	// ErrAPI matches every classified API error
	ErrAPI = errors.New("bigbuy API error")
	// ErrValidation matches ValidationError
	ErrValidation = errors.New("bigbuy validation error")
	// ErrProduct matches ProductError
	ErrProduct = errors.New("bigbuy products error")
	// ErrRateLimit matches RateLimitError
	ErrRateLimit = errors.New("bigbuy rate limit exceeded")
	// ErrResponse matches ResponseError
	ErrResponse = errors.New("bigbuy response error")
	// ErrServer matches ServerError
	ErrServer = errors.New("bigbuy server error")
)

// RateLimitResetHeader carries the epoch second at which a throttled caller
// may send requests again.
const RateLimitResetHeader = "X-Ratelimit-Reset"

// ValidationError is returned when BigBuy rejects a request payload.
// Fields maps a dotted field path to its messages; errors attached to the
// payload root are keyed by the empty path.
type ValidationError struct {
	StatusCode int
	Code       int
	Message    string
	Fields     map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("bigbuy validation error: status %d: %s", e.StatusCode, e.Message)
	}

	paths := make([]string, 0, len(e.Fields))
	for path := range e.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	parts := make([]string, 0, len(paths))
	for _, path := range paths {
		msgs := strings.Join(e.Fields[path], "; ")
		if path == "" {
			parts = append(parts, msgs)
			continue
		}
		parts = append(parts, path+": "+msgs)
	}
	return fmt.Sprintf("bigbuy validation error: status %d: %s", e.StatusCode, strings.Join(parts, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrAPI || target == ErrValidation
}

// ProductFailure describes why a single SKU was refused.
type ProductFailure struct {
	SKU     string `json:"sku"`
	Message string `json:"message"`
}

// ProductError is returned when one or more referenced products are
// invalid or inactive.
type ProductError struct {
	StatusCode int
	Info       string
	Products   []ProductFailure
}

func (e *ProductError) Error() string {
	parts := make([]string, 0, len(e.Products))
	for _, p := range e.Products {
		parts = append(parts, p.SKU+": "+p.Message)
	}
	return fmt.Sprintf("bigbuy products error: %s", strings.Join(parts, "; "))
}

func (e *ProductError) Is(target error) bool {
	return target == ErrAPI || target == ErrProduct
}

// SKUs returns the references of the refused products.
func (e *ProductError) SKUs() []string {
	skus := make([]string, 0, len(e.Products))
	for _, p := range e.Products {
		skus = append(skus, p.SKU)
	}
	return skus
}

// RateLimitError is returned when BigBuy throttles the caller. Reset holds
// the raw header value; ResetTime and ResetTimedelta are derived from it on
// every call.
type RateLimitError struct {
	StatusCode int
	Message    string
	Reset      string
}

func (e *RateLimitError) Error() string {
	if reset, ok := e.ResetTime(); ok {
		return fmt.Sprintf("bigbuy rate limit exceeded: status %d: resets at %s", e.StatusCode, reset.UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf("bigbuy rate limit exceeded: status %d", e.StatusCode)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrAPI || target == ErrRateLimit
}

// ResetTime returns the instant the rate limit window resets, if the
// response told us.
func (e *RateLimitError) ResetTime() (time.Time, bool) {
	value := strings.TrimSpace(e.Reset)
	if value == "" {
		return time.Time{}, false
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(seconds, 0), true
}

// ResetTimedelta returns how long after now the window resets. It reports
// false when the reset time is unknown or not after now.
func (e *RateLimitError) ResetTimedelta(now time.Time) (time.Duration, bool) {
	reset, ok := e.ResetTime()
	if !ok {
		return 0, false
	}
	wait := reset.Sub(now)
	if wait <= 0 {
		return 0, false
	}
	return wait, true
}

// ResponseError is an application error declared by BigBuy without a more
// specific shape. Code is the declared code, or the HTTP status when the
// body did not declare one.
type ResponseError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *ResponseError) Error() string {
	if e.Code != 0 && e.Code != e.StatusCode {
		return fmt.Sprintf("bigbuy response error: status %d: code %d: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("bigbuy response error: status %d: %s", e.StatusCode, e.Message)
}

func (e *ResponseError) Is(target error) bool {
	return target == ErrAPI || target == ErrResponse
}

// IsNotFound checks if the error indicates a not found response
func (e *ResponseError) IsNotFound() bool {
	return e.StatusCode == 404 || e.Code == 404
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *ResponseError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// ServerError is an upstream fault: a 5xx, a 200 wrapping an embedded 5xx,
// or a body that could not be parsed.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("bigbuy server error: status %d: %s", e.StatusCode, e.Message)
}

func (e *ServerError) Is(target error) bool {
	return target == ErrAPI || target == ErrServer
}

// IsRateLimit reports whether err is, or wraps, a RateLimitError.
func IsRateLimit(err error) bool {
	var e *RateLimitError
	return errors.As(err, &e)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsProduct reports whether err is, or wraps, a ProductError.
func IsProduct(err error) bool {
	var e *ProductError
	return errors.As(err, &e)
}

// IsServer reports whether err is, or wraps, a ServerError.
func IsServer(err error) bool {
	var e *ServerError
	return errors.As(err, &e)
}
