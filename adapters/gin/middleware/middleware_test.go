package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/adapters/prometheus"
	"github.com/abhissng/nhwr-mediator/utils/constant"
	"github.com/abhissng/nhwr-mediator/utils/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(middlewares ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middlewares...)
	return router
}

func TestRequestIDMiddleware_GeneratesAndEchoes(t *testing.T) {
	router := newTestRouter(RequestIDMiddleware(log.NewNopLogger()))
	var seen types.RequestID
	router.GET("/id", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))

	_, err := uuid.Parse(seen.String())
	require.NoError(t, err)
	assert.Equal(t, seen.String(), w.Header().Get(constant.RequestIDHeader))
}

func TestRequestIDMiddleware_KeepsIncomingID(t *testing.T) {
	router := newTestRouter(RequestIDMiddleware(log.NewNopLogger()))
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c).String())
	})

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(constant.RequestIDHeader, "caller-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "caller-id", w.Body.String())
}

func TestTransactionID(t *testing.T) {
	router := newTestRouter(TransactionIDMiddleware())
	router.GET("/tx", func(c *gin.Context) {
		c.String(http.StatusOK, GetTransactionID(c).String())
	})

	req := httptest.NewRequest(http.MethodGet, "/tx", nil)
	req.Header.Set(constant.TransactionIDHeader, "5f0c1a")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "5f0c1a", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tx", nil))
	assert.Empty(t, w.Body.String())
}

func TestGinRequestLogger_PassesResponseThrough(t *testing.T) {
	router := newTestRouter(GinRequestLogger(log.NewNopLogger(), true))
	router.GET("/echo", func(c *gin.Context) {
		c.String(http.StatusTeapot, "short and stout")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "short and stout", w.Body.String())
}

func TestGinMiddleware_ExposesMetrics(t *testing.T) {
	mc := prometheus.NewMetricsCollector(prometheus.WithServiceName("mw-test"))
	router := newTestRouter(GinMiddleware(mc))
	RegisterMetricsEndpoint(router, mc)
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, constant.MetricsEndpoint, nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `mw_test_http_requests_total{method="GET",path="/ping",status_code="200"} 1`), body)
	assert.Contains(t, body, `path="unmatched"`)
}

func TestCompressionMiddleware(t *testing.T) {
	router := newTestRouter(CompressionMiddleware())
	router.GET("/big", func(c *gin.Context) {
		c.String(http.StatusOK, strings.Repeat("practitioner ", 200))
	})

	req := httptest.NewRequest(http.MethodGet, "/big", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}
