package tracelib

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTracemapShutdown     = errors.New("tracemap instance was shutdown")
	ErrContextIsClosed      = errors.New("context is closed")
	ErrCircuitBreakerOpened = errors.New("circuit breaker is opened")
	ErrNoCoordinates        = errors.New("response has no coordinates")
	ErrInvalidTarget        = errors.New("target is not a valid hostname or ip address")
	ErrUnroutableTarget     = errors.New("target is not routable")
)

// RateLimitError is returned if remote side has responded with 429.
// RetryAfter is zero if response had no (valid) Retry-After header.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (r *RateLimitError) Error() string {
	if r.RetryAfter > 0 {
		return "rate limited, retry after " + r.RetryAfter.String()
	}

	return "rate limited"
}

// parseRetryAfter supports both forms of Retry-After: a number of
// seconds and HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		if seconds <= 0 {
			return 0
		}

		return time.Duration(seconds * float64(time.Second))
	}

	if date, err := http.ParseTime(value); err == nil && date.After(now) {
		return date.Sub(now)
	}

	return 0
}

type jsonHTTPError struct {
	Error struct {
		Message string `json:"message"`
		Context string `json:"context"`
	} `json:"error"`
}

type httpError struct {
	message    string
	err        error
	statusCode int
}

func (h *httpError) Message() string {
	if h == nil {
		return ""
	}

	return h.message
}

func (h *httpError) Err() string {
	if err := errors.Unwrap(h); err != nil {
		return err.Error()
	}

	return ""
}

func (h *httpError) StatusCode() int {
	if h != nil && h.statusCode != 0 {
		return h.statusCode
	}

	return http.StatusInternalServerError
}

func (h *httpError) Unwrap() error {
	if h == nil {
		return nil
	}

	return h.err
}

func (h *httpError) Error() string {
	switch {
	case h == nil:
		return ""
	case h.err != nil && h.message != "":
		return h.message + ": " + h.err.Error()
	case h.err != nil:
		return h.err.Error()
	}

	return h.message
}

func (h *httpError) MarshalJSON() ([]byte, error) {
	value := jsonHTTPError{}
	value.Error.Message = h.Message()
	value.Error.Context = h.Err()

	return json.Marshal(&value)
}
