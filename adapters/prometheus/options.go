package prometheus

import "github.com/prometheus/client_golang/prometheus"

// MetricsCollectorOptions defines the options for configuring MetricsCollector.
type MetricsCollectorOptions func(*MetricsCollector)

// WithServiceName sets the service name for the metrics collector.
func WithServiceName(serviceName string) MetricsCollectorOptions {
	return func(collector *MetricsCollector) {
		collector.serviceName = serviceName
	}
}

// WithRegistry sets the Prometheus registry for the metrics collector.
func WithRegistry(registry *prometheus.Registry) MetricsCollectorOptions {
	return func(collector *MetricsCollector) {
		collector.registry = registry
	}
}

// WithCustomMetrics sets custom metrics for the metrics collector.
func WithCustomMetrics(customMetrics map[string]prometheus.Collector) MetricsCollectorOptions {
	return func(collector *MetricsCollector) {
		collector.customMetrics = customMetrics
	}
}

// ServiceName returns the service name.
func (mc *MetricsCollector) ServiceName() string {
	return mc.serviceName
}

// Registry returns the Prometheus registry.
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// HttpRequestsInFlight returns the gauge metric for the number of HTTP requests in flight.
func (mc *MetricsCollector) HttpRequestsInFlight() prometheus.Gauge {
	return mc.httpRequestsInFlight
}

// RequestCount returns the counter metric for the number of HTTP requests.
func (mc *MetricsCollector) RequestCount() *prometheus.CounterVec {
	return mc.requestCount
}

// RequestDuration returns the histogram metric for the duration of HTTP requests.
func (mc *MetricsCollector) RequestDuration() *prometheus.HistogramVec {
	return mc.requestDuration
}

// ResponseSize returns the histogram metric for the size of HTTP responses.
func (mc *MetricsCollector) ResponseSize() *prometheus.HistogramVec {
	return mc.responseSize
}
