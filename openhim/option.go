package openhim

import (
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/sony/gobreaker"

	httpclient "github.com/abhissng/nhwr-mediator/adapters/http"
)

// Observer is told about the outcome of every platform call.
type Observer interface {
	ObservePlatformCall(operation string, err error)
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the log
func WithLogger(l *log.Log) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithHTTPClient replaces the HTTP client used for platform calls.
func WithHTTPClient(h *httpclient.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithBreaker replaces the circuit breaker guarding platform calls.
func WithBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

// WithObserver registers an observer, typically the metrics collector.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}
