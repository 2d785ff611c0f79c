package modeladapter

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var (
	// ErrUnavailable marks network failures and non-2xx responses.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrTimeout marks calls that exceeded the adapter's time bound.
	ErrTimeout = errors.New("backend timeout")
	// ErrMalformedPayload marks 2xx responses whose body has no usable shape.
	ErrMalformedPayload = errors.New("malformed payload")
)

// StatusError is returned when a backend answers with a non-2xx status. It
// matches ErrUnavailable. RetryAfter is parsed from the Retry-After header
// when the backend sends one (typically with 429 or 503).
type StatusError struct {
	Code       int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("unexpected status %d (retry after %s): %s", e.Code, e.RetryAfter, e.Body)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Is reports whether target is ErrUnavailable.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnavailable
}

// ParseRetryAfter parses the Retry-After header value as either seconds (integer)
// or an HTTP-date (RFC 7231). Returns zero if unparseable or if the date is in the past.
func ParseRetryAfter(val string) time.Duration {
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(val); err == nil {
		d := time.Until(t)
		if d > 0 {
			return d
		}
		return 0
	}
	return 0
}
