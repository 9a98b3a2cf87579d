package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/adapters/viper"
	"github.com/abhissng/nhwr-mediator/blame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpclient "github.com/abhissng/nhwr-mediator/adapters/http"
)

func writeConfig(t *testing.T, env, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, env), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, env, "config.yaml"), []byte(body), 0o600))
	return dir
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestRootCmd_Flags(t *testing.T) {
	cmd := rootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", "/etc/mediator", "-e", "production", "--mediator", "def.yaml"}))

	config, err := cmd.Flags().GetString("config")
	require.NoError(t, err)
	assert.Equal(t, "/etc/mediator", config)
	env, err := cmd.Flags().GetString("env")
	require.NoError(t, err)
	assert.Equal(t, "production", env)
}

func TestRun_MissingConfiguration(t *testing.T) {
	err := run(context.Background(), &runFlags{configDir: t.TempDir(), environment: "test"})
	assert.Error(t, err)
}

func TestRun_InvalidMediatorDefinition(t *testing.T) {
	dir := writeConfig(t, "test", "service: nhwr-mediator\nregister: false\n")
	definition := filepath.Join(dir, "mediator.json")
	require.NoError(t, os.WriteFile(definition, []byte(`{"urn": ""}`), 0o600))

	err := run(context.Background(), &runFlags{configDir: dir, environment: "test", mediatorFile: definition})
	assert.Error(t, err)
}

func TestRun_RegistrationRejected(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	platform := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		mu.Unlock()
		if strings.HasPrefix(r.URL.Path, "/authenticate/") {
			_ = json.NewEncoder(w).Encode(map[string]string{"salt": "s", "ts": "2026-01-01T00:00:00.000Z"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer platform.Close()

	port := freePort(t)
	dir := writeConfig(t, "production", fmt.Sprintf(`service: nhwr-mediator
register: true
heartbeat: false
api:
  apiURL: %s
  username: root@openhim.org
  password: openhim-password
server:
  host: 127.0.0.1
  port: %d
`, platform.URL, port))

	done := make(chan error, 1)
	go func() {
		done <- run(context.Background(), &runFlags{configDir: dir, environment: "production", mediatorFile: "../../config/mediator.json"})
	}()

	var err error
	select {
	case err = <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after the platform rejected registration")
	}

	require.Error(t, err)
	var b blame.Blame
	require.True(t, errors.As(err, &b))
	assert.Equal(t, blame.ErrorRegistrationFailed, b.FetchErrCode())

	mu.Lock()
	assert.Contains(t, paths, "POST /mediators")
	for _, p := range paths {
		assert.NotContains(t, p, "/config", "config must not be fetched after a failed registration")
	}
	mu.Unlock()

	l, listenErr := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, listenErr, "listener port must be free")
	_ = l.Close()
}

func TestNewDownstreamClient_TrustSelfSigned(t *testing.T) {
	registry := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer registry.Close()

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "api flag reaches the registry client", body: "api:\n  trustSelfSigned: true\n"},
		{name: "downstream flag", body: "downstream:\n  trustSelfSigned: true\n"},
		{name: "verification on by default", body: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfig(t, "production", "register: false\n"+tt.body)
			cfg, err := viper.Load(dir, viper.WithEnvironment("production"))
			require.NoError(t, err)

			resp, err := newDownstreamClient(cfg, log.NewNopLogger()).
				Do(context.Background(), httpclient.NewRequest(httpclient.MethodGet, registry.URL, nil))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}
