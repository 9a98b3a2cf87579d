package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/blame"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func pingRoutes() ServerOption {
	return WithRouteGroup(NewRouteGroupConfig("/api/v1", nil, []RouteConfig{
		NewRouteConfig(http.MethodGet, "/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") }),
		NewRouteConfig(http.MethodGet, "/panic", func(c *gin.Context) { panic("boom") }),
	}))
}

func TestServer_StartServeShutdown(t *testing.T) {
	srv := New(WithHost("127.0.0.1"), WithPort(0), WithLogger(log.NewNopLogger()), pingRoutes())

	require.NoError(t, srv.Start())
	require.NotEmpty(t, srv.Addr())

	resp, err := http.Get("http://" + srv.Addr() + "/api/v1/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	require.NoError(t, srv.Shutdown(context.Background()))

	select {
	case err, ok := <-srv.Errors():
		assert.False(t, ok, "unexpected serve error %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve loop did not stop")
	}

	_, err = http.Get("http://" + srv.Addr() + "/api/v1/ping")
	assert.Error(t, err)
}

func TestServer_StartTwice(t *testing.T) {
	srv := New(WithHost("127.0.0.1"), WithLogger(log.NewNopLogger()))
	require.NoError(t, srv.Start())
	defer func() { _ = srv.Shutdown(context.Background()) }()

	assert.ErrorIs(t, srv.Start(), blame.NewBasicBlame(blame.ErrorServerStartFailed))
}

func TestServer_PortInUse(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = taken.Close() }()
	port := taken.Addr().(*net.TCPAddr).Port

	srv := New(WithHost("127.0.0.1"), WithPort(port), WithLogger(log.NewNopLogger()))
	err = srv.Start()

	assert.ErrorIs(t, err, blame.NewBasicBlame(blame.ErrorServerStartFailed))
	assert.Empty(t, srv.Addr())
}

func TestServer_WithListener(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(WithListener(l), WithLogger(log.NewNopLogger()), pingRoutes())
	require.NoError(t, srv.Start())
	defer func() { _ = srv.Shutdown(context.Background()) }()

	assert.Equal(t, l.Addr().String(), srv.Addr())
}

func TestServer_RecoversFromPanics(t *testing.T) {
	srv := New(WithLogger(log.NewNopLogger()), pingRoutes())

	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), string(blame.ErrorInternalServerError))
}

func TestServer_RoutingConfigurator(t *testing.T) {
	srv := New(WithLogger(log.NewNopLogger()), WithRoutingConfigurator(func(e *gin.Engine) {
		e.GET("/custom", func(c *gin.Context) { c.Status(http.StatusAccepted) })
	}))

	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/custom", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	srv := New(WithLogger(log.NewNopLogger()))
	assert.NoError(t, srv.Shutdown(context.Background()))
}
