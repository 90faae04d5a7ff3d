package providers

import (
	"errors"
	"fmt"
	"time"
)

// ErrProviderUnavailable is returned while an upstream's circuit breaker is open.
var ErrProviderUnavailable = errors.New("provider unavailable")

// RateLimitError captures rate limit responses from upstream providers.
type RateLimitError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Remaining  string
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "provider rate limited"
	}
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}

// StatusError is a non-2xx response other than 429.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Retryable reports whether another attempt could succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500
}

// ParseError wraps a body that arrived intact but could not be understood.
type ParseError struct {
	Provider string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse: %v", e.Provider, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
