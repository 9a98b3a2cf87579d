// Package orchestration models the audit record of one outbound call made
// while servicing an inbound request, in the shape the OpenHIM core stores it.
package orchestration

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Request describes the outbound request of an orchestration.
type Request struct {
	Method    string            `json:"method"`
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers,omitempty"`
	Body      string            `json:"body,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Response describes what came back for an orchestration's request.
type Response struct {
	Status    int               `json:"status"`
	Headers   map[string]string `json:"headers,omitempty"`
	Body      string            `json:"body,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Orchestration is an immutable record of one downstream call. Response is nil
// when the transport failed before any response was available.
type Orchestration struct {
	Name     string    `json:"name"`
	Request  Request   `json:"request"`
	Response *Response `json:"response,omitempty"`
}

// StartTime is the moment the downstream call was issued.
func (o Orchestration) StartTime() time.Time {
	return o.Request.Timestamp
}

// Build assembles an Orchestration. requestHeaders is the serialized header
// set that was sent; it is stored as a map when it is a JSON object and kept
// under a "raw" key otherwise. Build performs no I/O and never fails.
func Build(
	name string,
	startTime time.Time,
	method, url, requestHeaders, requestBody string,
	response *Response,
	responseBody string,
) Orchestration {
	o := Orchestration{
		Name: name,
		Request: Request{
			Method:    method,
			URL:       url,
			Headers:   decodeHeaders(requestHeaders),
			Body:      requestBody,
			Timestamp: startTime,
		},
	}
	if response != nil {
		resp := *response
		resp.Headers = copyHeaders(response.Headers)
		resp.Body = responseBody
		if resp.Timestamp.IsZero() {
			resp.Timestamp = time.Now()
		}
		o.Response = &resp
	}
	return o
}

// NewResponse converts the realized status and headers of a downstream response.
func NewResponse(status int, header http.Header, receivedAt time.Time) *Response {
	headers := make(map[string]string, len(header))
	for key := range header {
		headers[key] = header.Get(key)
	}
	return &Response{Status: status, Headers: headers, Timestamp: receivedAt}
}

// SerializeHeaders renders headers the way they are handed to Build.
func SerializeHeaders(headers map[string]string) string {
	raw, err := json.Marshal(headers)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func decodeHeaders(serialized string) map[string]string {
	if serialized == "" {
		return nil
	}
	var headers map[string]string
	if err := json.Unmarshal([]byte(serialized), &headers); err != nil {
		return map[string]string{"raw": serialized}
	}
	return headers
}

func copyHeaders(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Recorder collects the orchestrations of one inbound request in call order.
type Recorder struct {
	mu    sync.Mutex
	items []Orchestration
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Add appends o.
func (r *Recorder) Add(o Orchestration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, o)
}

// List returns a copy of the recorded orchestrations.
func (r *Recorder) List() []Orchestration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Orchestration, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of recorded orchestrations.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
