package prometheus

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// MetricsCollector is a struct for collecting Prometheus metrics.
type MetricsCollector struct {
	registry             *prometheus.Registry
	serviceName          string
	requestCount         *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	responseSize         *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge
	downstreamCalls      *prometheus.CounterVec
	downstreamDuration   *prometheus.HistogramVec
	platformCalls        *prometheus.CounterVec
	configReplacements   *prometheus.CounterVec
	customMetrics        map[string]prometheus.Collector
}

// NewMetricsCollector creates a new Prometheus metrics collector with options.
// Every metric lives on the collector's own registry.
func NewMetricsCollector(options ...MetricsCollectorOptions) *MetricsCollector {
	collector := &MetricsCollector{
		registry:      prometheus.NewRegistry(),
		customMetrics: make(map[string]prometheus.Collector),
	}

	for _, option := range options {
		option(collector)
	}

	collector.registerDefaultMetrics()
	return collector
}

// namespace turns the service name into a valid metric prefix.
func (mc *MetricsCollector) namespace() string {
	return strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(mc.serviceName)
}

func (mc *MetricsCollector) registerDefaultMetrics() {
	ns := mc.namespace()
	httpLabels := []string{"method", "path", "status_code"}

	mc.requestCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, httpLabels)

	mc.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests",
		Buckets:   prometheus.DefBuckets,
	}, httpLabels)

	mc.responseSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "http_response_size_bytes",
		Help:      "Size of HTTP responses",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
	}, httpLabels)

	mc.httpRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "http_requests_in_flight",
		Help:      "Current number of HTTP requests in flight",
	})

	mc.downstreamCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "downstream_requests_total",
		Help:      "Calls made to the downstream registry",
	}, []string{"service", "operation", "outcome"})

	mc.downstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "downstream_request_duration_seconds",
		Help:      "Duration of calls made to the downstream registry",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "operation"})

	mc.platformCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "platform_calls_total",
		Help:      "Calls made to the interoperability platform",
	}, []string{"operation", "outcome"})

	mc.configReplacements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "config_replacements_total",
		Help:      "Configuration replacements by origin",
	}, []string{"source"})

	mc.registry.MustRegister(
		mc.requestCount,
		mc.requestDuration,
		mc.responseSize,
		mc.httpRequestsInFlight,
		mc.downstreamCalls,
		mc.downstreamDuration,
		mc.platformCalls,
		mc.configReplacements,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, metric := range mc.customMetrics {
		mc.registry.MustRegister(metric)
	}
}

// ObservePlatformCall counts one call to the platform API.
func (mc *MetricsCollector) ObservePlatformCall(operation string, err error) {
	mc.platformCalls.WithLabelValues(operation, outcome(err)).Inc()
}

// ObserveDownstreamCall records one call to a downstream service.
func (mc *MetricsCollector) ObserveDownstreamCall(service, operation string, elapsed time.Duration, err error) {
	mc.downstreamCalls.WithLabelValues(service, operation, outcome(err)).Inc()
	mc.downstreamDuration.WithLabelValues(service, operation).Observe(elapsed.Seconds())
}

// ObserveConfigReplaced counts a configuration swap; source is e.g. "initial" or "heartbeat".
func (mc *MetricsCollector) ObserveConfigReplaced(source string) {
	mc.configReplacements.WithLabelValues(source).Inc()
}

// AddCustomMetric adds a custom metric to the collector
func (mc *MetricsCollector) AddCustomMetric(name string, metric prometheus.Collector) {
	mc.customMetrics[name] = metric
	mc.registry.MustRegister(metric)
}

// GetCounter creates a new counter metric
func (mc *MetricsCollector) GetCounter(name, help string) prometheus.Counter {
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: mc.namespace(),
		Name:      name,
		Help:      help,
	})
	mc.AddCustomMetric(name, counter)
	return counter
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
