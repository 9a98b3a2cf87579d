package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/gin/server"
	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/blame"
	"github.com/abhissng/nhwr-mediator/configstore"
	"github.com/abhissng/nhwr-mediator/mediator"
	"github.com/abhissng/nhwr-mediator/openhim"
	"github.com/abhissng/nhwr-mediator/utils/constant"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURN = "urn:mediator:test"

func definitionJSON(registryURL string) string {
	return fmt.Sprintf(`{
  "urn": %q,
  "version": "1.0.0",
  "name": "Test Mediator",
  "endpoints": [{"name": "Test", "host": "localhost", "port": 5019, "type": "http"}],
  "config": {"nhwr": {"url": %q, "username": "u", "password": "p"}}
}`, testURN, registryURL)
}

func testDefinition(t *testing.T) *mediator.Definition {
	t.Helper()
	def, err := mediator.Parse([]byte(definitionJSON("http://static.local")), ".json")
	require.NoError(t, err)
	return def
}

// platform is a minimal OpenHIM core. Authentication headers are not checked.
type platform struct {
	mu             sync.Mutex
	registerStatus int
	configStatus   int
	config         map[string]any
	changed        bool
	registrations  int
	srv            *httptest.Server
}

func newPlatform(t *testing.T) *platform {
	t.Helper()
	p := &platform{
		registerStatus: http.StatusCreated,
		configStatus:   http.StatusOK,
		config:         map[string]any{"nhwr": map[string]any{"url": "http://initial.local", "username": "u", "password": "p"}},
	}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		switch {
		case strings.HasPrefix(r.URL.Path, "/authenticate/"):
			_ = json.NewEncoder(w).Encode(map[string]string{"salt": "s", "ts": "2026-01-01T00:00:00.000Z"})
		case r.URL.Path == "/mediators":
			p.registrations++
			w.WriteHeader(p.registerStatus)
		case strings.HasSuffix(r.URL.Path, "/config"):
			w.WriteHeader(p.configStatus)
			if p.configStatus == http.StatusOK {
				_ = json.NewEncoder(w).Encode(p.config)
			}
		case strings.HasSuffix(r.URL.Path, "/heartbeat"):
			var beat struct {
				Config bool `json:"config"`
			}
			_ = json.NewDecoder(r.Body).Decode(&beat)
			if beat.Config || p.changed {
				p.changed = false
				_ = json.NewEncoder(w).Encode(p.config)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *platform) client() *openhim.Client {
	return openhim.NewClient(openhim.Config{
		APIURL:   p.srv.URL,
		Username: "root@openhim.org",
		Password: "password",
	}, openhim.WithLogger(log.NewNopLogger()))
}

func (p *platform) push(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config = map[string]any{"nhwr": map[string]any{"url": url, "username": "u", "password": "p"}}
	p.changed = true
}

func (p *platform) registered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.registrations
}

// fakeServer records Start and Shutdown calls.
type fakeServer struct {
	mu        sync.Mutex
	startErr  error
	started   bool
	shutdowns int
	errs      chan error
}

func newFakeServer() *fakeServer {
	return &fakeServer{errs: make(chan error, 1)}
}

func (s *fakeServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	return nil
}

func (s *fakeServer) Errors() <-chan error { return s.errs }

func (s *fakeServer) Shutdown(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdowns++
	return nil
}

func (s *fakeServer) snapshot() (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started, s.shutdowns
}

type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *countingMetrics) ObserveConfigReplaced(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[source]++
}

func (m *countingMetrics) count(source string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[source]
}

func registryURL(t *testing.T, store *configstore.Store) string {
	t.Helper()
	svc, err := store.Service(constant.DownstreamService)
	if err != nil {
		return ""
	}
	return svc.URL
}

// runAsync starts l.Run and returns a function that cancels it and waits for
// its result.
func runAsync(t *testing.T, l *Lifecycle) (stop func() error, result <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	t.Cleanup(cancel)
	return func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("Run did not return after cancellation")
			return nil
		}
	}, done
}

func TestRun_RegistersFetchesAndFollowsHeartbeat(t *testing.T) {
	p := newPlatform(t)
	store := configstore.New()
	srv := newFakeServer()
	metrics := &countingMetrics{}

	l := New(testDefinition(t), store, srv,
		WithLogger(log.NewNopLogger()),
		WithPlatform(p.client()),
		WithHeartbeat(true, 20*time.Millisecond),
		WithMetrics(metrics),
	)
	assert.Equal(t, Unregistered, l.State())

	stop, _ := runAsync(t, l)

	require.Eventually(t, func() bool { return l.State() == Serving }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, p.registered())
	assert.Equal(t, "http://initial.local", registryURL(t, store))
	assert.Equal(t, 1, metrics.count(SourceInitial))
	started, _ := srv.snapshot()
	assert.True(t, started)

	p.push("http://pushed.local")
	require.Eventually(t, func() bool { return registryURL(t, store) == "http://pushed.local" }, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, metrics.count(SourceHeartbeat), 1)

	require.NoError(t, stop())
	_, shutdowns := srv.snapshot()
	assert.Equal(t, 1, shutdowns)
}

func TestRun_RegistrationFailure(t *testing.T) {
	p := newPlatform(t)
	p.registerStatus = http.StatusInternalServerError
	srv := newFakeServer()

	l := New(testDefinition(t), configstore.New(), srv, WithLogger(log.NewNopLogger()), WithPlatform(p.client()))
	err := l.Run(context.Background())

	require.Error(t, err)
	var b blame.Blame
	require.True(t, errors.As(err, &b))
	assert.Equal(t, blame.ErrorRegistrationFailed, b.FetchErrCode())
	assert.Equal(t, Failed, l.State())
	started, _ := srv.snapshot()
	assert.False(t, started, "no listener after a failed registration")
}

func TestRun_InitialConfigFailure(t *testing.T) {
	p := newPlatform(t)
	p.configStatus = http.StatusInternalServerError
	store := configstore.New()
	srv := newFakeServer()

	l := New(testDefinition(t), store, srv, WithLogger(log.NewNopLogger()), WithPlatform(p.client()))
	err := l.Run(context.Background())

	var b blame.Blame
	require.True(t, errors.As(err, &b))
	assert.Equal(t, blame.ErrorInitialConfigFetchFailed, b.FetchErrCode())
	assert.Equal(t, Failed, l.State())
	assert.Zero(t, store.Version())
	started, _ := srv.snapshot()
	assert.False(t, started)
}

func TestRun_StaticConfigurationWithoutRegistration(t *testing.T) {
	store := configstore.New()
	srv := newFakeServer()
	metrics := &countingMetrics{}

	l := New(testDefinition(t), store, srv, WithLogger(log.NewNopLogger()), WithMetrics(metrics))
	stop, _ := runAsync(t, l)

	require.Eventually(t, func() bool { return l.State() == Serving }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "http://static.local", registryURL(t, store))
	assert.Equal(t, 1, metrics.count(SourceStatic))
	require.NoError(t, stop())
}

func TestRun_ListenerFailure(t *testing.T) {
	srv := newFakeServer()
	srv.startErr = blame.ServerStartFailed(errors.New("address already in use"))

	l := New(testDefinition(t), configstore.New(), srv, WithLogger(log.NewNopLogger()))
	err := l.Run(context.Background())

	assert.ErrorIs(t, err, srv.startErr)
	assert.Equal(t, Failed, l.State())
}

func TestRun_ServeFailureStopsRun(t *testing.T) {
	srv := newFakeServer()
	l := New(testDefinition(t), configstore.New(), srv, WithLogger(log.NewNopLogger()))
	_, result := runAsync(t, l)

	require.Eventually(t, func() bool { return l.State() == Serving }, 2*time.Second, 10*time.Millisecond)
	serveErr := errors.New("listener closed unexpectedly")
	srv.errs <- serveErr

	select {
	case err := <-result:
		assert.ErrorIs(t, err, serveErr)
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept going after the listener failed")
	}
	assert.Equal(t, Failed, l.State())
}

func TestRun_ReloadsWatchedDefinition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediator.json")
	require.NoError(t, os.WriteFile(path, []byte(definitionJSON("http://before.local")), 0o600))
	def, err := mediator.Load(path)
	require.NoError(t, err)

	store := configstore.New()
	l := New(def, store, newFakeServer(), WithLogger(log.NewNopLogger()), WithDefinitionWatch(path))
	stop, _ := runAsync(t, l)

	require.Eventually(t, func() bool { return l.State() == Serving }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "http://before.local", registryURL(t, store))

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(definitionJSON("http://after.local")), 0o600)
		return registryURL(t, store) == "http://after.local"
	}, 5*time.Second, 200*time.Millisecond)

	require.NoError(t, stop())
}

func TestWatchDefinition_IgnoresInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediator.json")
	require.NoError(t, os.WriteFile(path, []byte(definitionJSON("http://before.local")), 0o600))

	w, err := WatchDefinition(path, log.NewNopLogger())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"urn": ""}`), 0o600))
	select {
	case cfg := <-w.Configs():
		t.Fatalf("invalid definition published: %v", cfg)
	case <-time.After(400 * time.Millisecond):
	}

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	_, open := <-w.Configs()
	assert.False(t, open)
}

func TestRun_ServesHealthOnRealListener(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := configstore.New()
	srv := server.New(
		server.WithLogger(log.NewNopLogger()),
		server.WithHost("127.0.0.1"),
		server.WithPort(0),
		server.WithRoutes([]server.RouteConfig{
			server.NewRouteConfig(http.MethodGet, constant.HealthEndpoint, func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"version": store.Version()})
			}),
		}),
	)

	l := New(testDefinition(t), store, srv, WithLogger(log.NewNopLogger()))
	stop, _ := runAsync(t, l)
	require.Eventually(t, func() bool { return l.State() == Serving }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr() + constant.HealthEndpoint)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, stop())
	_, err = http.Get("http://" + srv.Addr() + constant.HealthEndpoint)
	assert.Error(t, err)
}
