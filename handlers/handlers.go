// Package handlers implements the mediator's HTTP endpoints. Each request
// reads the configuration once, makes one downstream call and records it as an
// orchestration.
package handlers

import (
	"context"
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/configstore"
	"github.com/abhissng/nhwr-mediator/orchestration"
	"github.com/abhissng/nhwr-mediator/utils/helpers"
	"github.com/abhissng/nhwr-mediator/utils/types"

	httpclient "github.com/abhissng/nhwr-mediator/adapters/http"
)

// Orchestration names as they appear on the platform.
const (
	UpdateOrchestrationName = "Posting Practitioner data to NHWR"
	FetchOrchestrationName  = "Fetching Records from NHWR"
)

const (
	orchestrationsKey    = "orchestrations"
	defaultReportTimeout = 30 * time.Second
	redactedCredentials  = "Basic [REDACTED]"
)

// Reporter sends the outcome of a request to the platform.
type Reporter interface {
	ReportStatus(
		ctx context.Context,
		transactionID types.TransactionID,
		statusText string,
		body string,
		statusCode int,
		orchestrations []orchestration.Orchestration,
	) error
}

// Metrics observes downstream calls.
type Metrics interface {
	ObserveDownstreamCall(service, operation string, elapsed time.Duration, err error)
}

// Handlers serves the practitioner endpoints.
type Handlers struct {
	store             *configstore.Store
	client            *httpclient.Client
	reporter          Reporter
	metrics           Metrics
	state             func() string
	log               *log.Log
	legacyFailureMode bool
	reportTimeout     time.Duration
}

// Option configures Handlers.
type Option func(*Handlers)

// WithLogger sets the log
func WithLogger(l *log.Log) Option {
	return func(h *Handlers) {
		h.log = l
	}
}

// WithReporter turns on transaction status reporting.
func WithReporter(r Reporter) Option {
	return func(h *Handlers) {
		h.reporter = r
	}
}

// WithMetrics records every downstream call.
func WithMetrics(m Metrics) Option {
	return func(h *Handlers) {
		h.metrics = m
	}
}

// WithLegacyFailureMode makes a failed update leave the caller without a
// response until its request context ends.
func WithLegacyFailureMode(enabled bool) Option {
	return func(h *Handlers) {
		h.legacyFailureMode = enabled
	}
}

// WithStateProvider exposes the lifecycle state on the health endpoint.
func WithStateProvider(state func() string) Option {
	return func(h *Handlers) {
		h.state = state
	}
}

// WithReportTimeout bounds a single status report.
func WithReportTimeout(d time.Duration) Option {
	return func(h *Handlers) {
		h.reportTimeout = d
	}
}

// New builds the handlers on top of store and client.
func New(store *configstore.Store, client *httpclient.Client, opts ...Option) *Handlers {
	h := &Handlers{
		store:         store,
		client:        client,
		reportTimeout: defaultReportTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = log.NewBasicLogger(helpers.IsProdEnvironment())
		h.log.Warn("Logger not provided, using default logger")
	}
	return h
}
