package middleware

import (
	"strconv"
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/prometheus"
	"github.com/abhissng/nhwr-mediator/utils/constant"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

// GinMiddleware returns a Gin middleware for collecting metrics
func GinMiddleware(mc *prometheus.MetricsCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		mc.HttpRequestsInFlight().Inc()
		defer mc.HttpRequestsInFlight().Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}
		statusCode := strconv.Itoa(c.Writer.Status())
		size := max(c.Writer.Size(), 0)

		mc.RequestCount().WithLabelValues(c.Request.Method, path, statusCode).Inc()
		mc.RequestDuration().WithLabelValues(c.Request.Method, path, statusCode).Observe(time.Since(start).Seconds())
		mc.ResponseSize().WithLabelValues(c.Request.Method, path, statusCode).Observe(float64(size))
	}
}

// RegisterMetricsEndpoint registers the Prometheus metrics endpoint
func RegisterMetricsEndpoint(router gin.IRoutes, mc *prometheus.MetricsCollector) {
	router.GET(constant.MetricsEndpoint, gin.WrapH(promhttp.HandlerFor(
		mc.Registry(),
		promhttp.HandlerOpts{},
	)))
}
