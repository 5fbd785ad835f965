package tracelib

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

type circuitBreakerCallback func(context.Context) (*http.Response, error)

type circuitBreakerState uint8

const (
	circuitBreakerStateClosed circuitBreakerState = iota
	circuitBreakerStateHalfOpened
	circuitBreakerStateOpened
)

// circuitBreaker protects providers which are down from being hammered
// by every hop of every trace. Rate limit responses are not failures:
// remote side is alive, it just wants us to slow down.
type circuitBreaker struct {
	mutex sync.Mutex
	state circuitBreakerState

	failuresCount     uint32
	halfOpenInFlight  bool
	openedAt          time.Time
	lastFailureAt     time.Time
	openThreshold     uint32
	halfOpenTimeout   time.Duration
	resetFailuresTime time.Duration

	now func() time.Time
}

func (c *circuitBreaker) Do(ctx context.Context, callback circuitBreakerCallback) (*http.Response, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}

	resp, err := callback(ctx)

	if ctx.Err() != nil {
		c.abort()

		if resp != nil {
			flushResponse(resp.Body)
		}

		return nil, ctx.Err()
	}

	c.release(err)

	return resp, err
}

func (c *circuitBreaker) acquire() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()

	switch c.state {
	case circuitBreakerStateOpened:
		if now.Sub(c.openedAt) < c.halfOpenTimeout {
			return ErrCircuitBreakerOpened
		}

		c.state = circuitBreakerStateHalfOpened
		c.halfOpenInFlight = false

		fallthrough
	case circuitBreakerStateHalfOpened:
		if c.halfOpenInFlight {
			return ErrCircuitBreakerOpened
		}

		c.halfOpenInFlight = true
	case circuitBreakerStateClosed:
		if c.failuresCount > 0 && now.Sub(c.lastFailureAt) > c.resetFailuresTime {
			c.failuresCount = 0
		}
	}

	return nil
}

func (c *circuitBreaker) release(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var rateLimitErr *RateLimitError

	failed := err != nil && !errors.As(err, &rateLimitErr)

	switch c.state {
	case circuitBreakerStateHalfOpened:
		c.halfOpenInFlight = false

		if failed {
			c.open()
		} else {
			c.state = circuitBreakerStateClosed
			c.failuresCount = 0
		}
	case circuitBreakerStateClosed:
		if !failed {
			return
		}

		c.failuresCount++
		c.lastFailureAt = c.now()

		if c.failuresCount > c.openThreshold {
			c.open()
		}
	}
}

// abort is called if request was cancelled by the caller. It says
// nothing about remote side.
func (c *circuitBreaker) abort() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.halfOpenInFlight = false
}

func (c *circuitBreaker) open() {
	c.state = circuitBreakerStateOpened
	c.openedAt = c.now()
	c.failuresCount = 0
}

func newCircuitBreaker(openThreshold uint32,
	halfOpenTimeout, resetFailuresTimeout time.Duration) *circuitBreaker {
	return &circuitBreaker{
		openThreshold:     openThreshold,
		halfOpenTimeout:   halfOpenTimeout,
		resetFailuresTime: resetFailuresTimeout,
		now:               time.Now,
	}
}
