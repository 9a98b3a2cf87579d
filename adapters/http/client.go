package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/blame"
	"github.com/abhissng/nhwr-mediator/utils/helpers"
	"github.com/valyala/fasthttp"
)

// Transport performs a single call. It abstracts over net/http and fasthttp.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// stdTransport implements Transport using the standard net/http package with a
// bounded connection pool.
type stdTransport struct {
	client *http.Client
}

func newStdTransport(opts Options) *stdTransport {
	return &stdTransport{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxConnsPerHost:     opts.MaxConns,
				MaxIdleConnsPerHost: opts.MaxConns,
				IdleConnTimeout:     90 * time.Second,
				TLSClientConfig:     &tls.Config{InsecureSkipVerify: opts.SkipVerify}, // #nosec G402
			},
		},
	}
}

// Do executes an HTTP request using the standard net/http client.
func (t *stdTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, blame.CreateHTTPRequestFailed(err)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	//#nosec G704
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
		ReceivedAt: time.Now(),
	}
	if err != nil {
		// the status line arrived; surface what was read with the error
		return out, err
	}
	return out, nil
}

// fastHTTPTransport implements Transport using the valyala/fasthttp package.
type fastHTTPTransport struct {
	client *fasthttp.Client
}

// newFastHTTPTransport queues calls over the MaxConns cap for up to the call
// timeout instead of failing them with fasthttp.ErrNoFreeConns.
func newFastHTTPTransport(opts Options) *fastHTTPTransport {
	wait := opts.Timeout
	if wait <= 0 {
		wait = DefaultTimeout
	}
	return &fastHTTPTransport{
		client: &fasthttp.Client{
			MaxConnsPerHost:    opts.MaxConns,
			MaxConnWaitTimeout: wait,
			TLSConfig:          &tls.Config{InsecureSkipVerify: opts.SkipVerify}, // #nosec G402
		},
	}
}

// Do executes an HTTP request using the FastHTTP client. The context deadline
// is honoured; plain cancellation without a deadline is not observed by fasthttp.
func (t *fastHTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	fReq := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(fReq)
	fResp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(fResp)

	fReq.SetRequestURI(req.URL)
	fReq.Header.SetMethod(req.Method)
	fReq.SetBody(req.Body)
	for key, value := range req.Headers {
		fReq.Header.Set(key, value)
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = t.client.DoDeadline(fReq, fResp, deadline)
	} else {
		err = t.client.Do(fReq, fResp)
	}
	if err != nil {
		return nil, err
	}

	header := make(http.Header)
	fResp.Header.VisitAll(func(key, value []byte) {
		header.Add(string(key), string(value))
	})
	return &Response{
		StatusCode: fResp.StatusCode(),
		Header:     header,
		Body:       append([]byte(nil), fResp.Body()...),
		ReceivedAt: time.Now(),
	}, nil
}

// Client issues calls to the downstream registry. It is safe for concurrent use
// and shares one connection pool across calls.
type Client struct {
	options   Options
	transport Transport
	log       *log.Log
}

// NewClient builds a Client. Defaults: 30s timeout, 32 sockets per host, net/http.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		options: Options{
			Timeout:  DefaultTimeout,
			MaxConns: DefaultMaxConns,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = log.NewBasicLogger(helpers.IsProdEnvironment())
		c.log.Warn("Logger not provided, using default logger")
	}
	if c.transport == nil {
		if c.options.UseFastHTTP {
			c.transport = newFastHTTPTransport(c.options)
		} else {
			c.transport = newStdTransport(c.options)
		}
	}
	return c
}

// Options returns the effective client options.
func (c *Client) Options() Options {
	return c.options
}

// Do performs req. On a transport failure it returns a DownstreamRequestFailed
// blame; the response is returned too when the transport surfaced a partial one.
// Non-2xx statuses are not errors: the caller decides what they mean.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := helpers.ValidateURL(req.URL); err != nil {
		return nil, blame.URLValidationFailed(req.URL, err)
	}

	if c.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.options.Timeout)
		defer cancel()
	}

	c.log.Debug("Downstream request",
		log.String("method", req.Method),
		log.String("url", req.URL),
		c.log.Any("headers", req.Headers),
		log.Duration("timeout", c.options.Timeout),
	)

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return resp, blame.DownstreamRequestFailed(req.Method, req.URL, err)
	}

	c.log.Debug("Downstream response",
		log.String("url", req.URL),
		log.Int("status", resp.StatusCode),
		log.Int("bytes", len(resp.Body)),
	)
	return resp, nil
}

// BasicAuth returns the Authorization header value for username and password.
func BasicAuth(username, password string) string {
	return helpers.BasicAuth(username, password)
}
