package http

import (
	"net/http"
	"time"
)

// Request is one outbound call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// NewRequest builds a Request with an empty header set.
func NewRequest(method, url string, body []byte) *Request {
	return &Request{Method: method, URL: url, Headers: make(map[string]string), Body: body}
}

// WithHeader sets a header and returns the request for chaining.
func (r *Request) WithHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

// Response is the realized response of a Request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	ReceivedAt time.Time
}

// Options configures a Client.
type Options struct {
	Timeout     time.Duration
	MaxConns    int
	SkipVerify  bool
	UseFastHTTP bool
}
