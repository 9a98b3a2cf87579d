package http

import (
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/log"
)

// ClientOption defines a functional option for configuring the Client
type ClientOption func(*Client)

// WithTimeout sets the per-call budget. Zero disables it.
func WithTimeout(duration time.Duration) ClientOption {
	return func(c *Client) {
		c.options.Timeout = duration
	}
}

// WithMaxConns caps the concurrent sockets per downstream host.
func WithMaxConns(maxConns int) ClientOption {
	return func(c *Client) {
		if maxConns > 0 {
			c.options.MaxConns = maxConns
		}
	}
}

// WithSkipVerify accepts self-signed certificates.
func WithSkipVerify(skip bool) ClientOption {
	return func(c *Client) {
		c.options.SkipVerify = skip
	}
}

// WithFastHTTP sets the flag to use fastHTTP
func WithFastHTTP(enabled bool) ClientOption {
	return func(c *Client) {
		c.options.UseFastHTTP = enabled
	}
}

// WithLogger sets the log
func WithLogger(log *log.Log) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithTransport replaces the transport, mainly for tests.
func WithTransport(t Transport) ClientOption {
	return func(c *Client) {
		c.transport = t
	}
}
