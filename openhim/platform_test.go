package openhim

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/utils/constant"
)

// fakePlatform is an in-memory stand-in for the platform API.
type fakePlatform struct {
	mu sync.Mutex

	salt     string
	password string

	authStatus     int
	registerStatus int
	config         map[string]any
	changed        bool

	registered   []map[string]any
	heartbeats   []heartbeatRequest
	transactions map[string]TransactionUpdate
	badTokens    int

	srv *httptest.Server
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()
	p := &fakePlatform{
		salt:           "user-salt",
		password:       "openhim-password",
		authStatus:     http.StatusOK,
		registerStatus: http.StatusCreated,
		config: map[string]any{
			"nhwr": map[string]any{"url": "http://nhwr.local", "username": "u", "password": "p"},
		},
		transactions: make(map[string]TransactionUpdate),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /authenticate/{user}", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		status := p.authStatus
		p.mu.Unlock()
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"salt": p.salt, "ts": "2026-01-01T00:00:00.000Z"})
	})
	mux.HandleFunc("POST /mediators", p.authed(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		p.mu.Lock()
		p.registered = append(p.registered, body)
		status := p.registerStatus
		p.mu.Unlock()
		w.WriteHeader(status)
	}))
	mux.HandleFunc("GET /mediators/{urn}/config", p.authed(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		writeJSON(w, http.StatusOK, p.config)
	}))
	mux.HandleFunc("POST /mediators/{urn}/heartbeat", p.authed(func(w http.ResponseWriter, r *http.Request) {
		var beat heartbeatRequest
		_ = json.NewDecoder(r.Body).Decode(&beat)
		p.mu.Lock()
		defer p.mu.Unlock()
		p.heartbeats = append(p.heartbeats, beat)
		if beat.Config || p.changed {
			p.changed = false
			writeJSON(w, http.StatusOK, p.config)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	mux.HandleFunc("PUT /transactions/{id}", p.authed(func(w http.ResponseWriter, r *http.Request) {
		var update TransactionUpdate
		_ = json.NewDecoder(r.Body).Decode(&update)
		p.mu.Lock()
		p.transactions[r.PathValue("id")] = update
		p.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))

	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

// authed rejects requests whose auth-token does not match the salt and password.
func (p *fakePlatform) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		salt := r.Header.Get(constant.AuthSaltHeader)
		ts := r.Header.Get(constant.AuthTimestampHeader)
		if r.Header.Get(constant.AuthUsernameHeader) == "" ||
			r.Header.Get(constant.AuthTokenHeader) != authToken(salt, p.password, ts) {
			p.mu.Lock()
			p.badTokens++
			p.mu.Unlock()
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (p *fakePlatform) pushConfig(cfg map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config = cfg
	p.changed = true
}

func (p *fakePlatform) setStatus(auth, register int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.authStatus = auth
	p.registerStatus = register
}

func (p *fakePlatform) snapshotRegistered() []map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]map[string]any(nil), p.registered...)
}

func (p *fakePlatform) transaction(id string) (TransactionUpdate, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	update, ok := p.transactions[id]
	return update, ok
}

func (p *fakePlatform) rejectedTokens() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.badTokens
}

func (p *fakePlatform) snapshotHeartbeats() []heartbeatRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]heartbeatRequest(nil), p.heartbeats...)
}

func (p *fakePlatform) apiConfig() Config {
	return Config{APIURL: p.srv.URL, Username: "root@openhim.org", Password: p.password}
}

func (p *fakePlatform) client(opts ...Option) *Client {
	return NewClient(p.apiConfig(), append([]Option{WithLogger(log.NewNopLogger())}, opts...)...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
