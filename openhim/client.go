package openhim

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/blame"
	"github.com/abhissng/nhwr-mediator/configstore"
	"github.com/abhissng/nhwr-mediator/mediator"
	"github.com/abhissng/nhwr-mediator/result"
	"github.com/abhissng/nhwr-mediator/utils/circuitBreaker"
	"github.com/abhissng/nhwr-mediator/utils/constant"
	"github.com/abhissng/nhwr-mediator/utils/helpers"
	"github.com/sony/gobreaker"

	httpclient "github.com/abhissng/nhwr-mediator/adapters/http"
)

const authTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Operation names reported to the Observer.
const (
	OpAuthenticate      = "authenticate"
	OpRegister          = "register"
	OpFetchConfig       = "fetch_config"
	OpHeartbeat         = "heartbeat"
	OpTransactionUpdate = "transaction_update"
)

var errNotAuthenticated = errors.New("no auth salt, call Authenticate first")

// Client is the platform API client. It is safe for concurrent use.
type Client struct {
	cfg      Config
	http     *httpclient.Client
	breaker  *gobreaker.CircuitBreaker
	log      *log.Log
	observer Observer
	now      func() time.Time
	started  time.Time

	mu   sync.RWMutex
	salt string
}

// NewClient builds a Client for cfg. A self-signed platform certificate is
// accepted when cfg.TrustSelfSigned is set.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = log.NewBasicLogger(helpers.IsProdEnvironment())
		c.log.Warn("Logger not provided, using default logger")
	}
	if c.http == nil {
		c.http = httpclient.NewClient(
			httpclient.WithSkipVerify(cfg.TrustSelfSigned),
			httpclient.WithLogger(c.log),
		)
	}
	if c.breaker == nil {
		c.breaker = circuitBreaker.NewCircuitBreaker(
			circuitBreaker.WithOnStateChange(func(name string, from, to gobreaker.State) {
				c.log.Warn("Platform circuit breaker state changed",
					log.String("breaker", name),
					log.Stringer("from", from),
					log.Stringer("to", to),
				)
			}),
		)
	}
	c.started = c.now()
	return c
}

// Config returns the credentials the client was built with.
func (c *Client) Config() Config {
	return c.cfg
}

// Uptime is the time elapsed since the client was created.
func (c *Client) Uptime() time.Duration {
	return c.now().Sub(c.started)
}

// Authenticate fetches the user's password salt from the platform. The salt is
// kept for AuthHeaders.
func (c *Client) Authenticate(ctx context.Context) error {
	err := c.authenticate(ctx)
	c.observe(OpAuthenticate, err)
	return err
}

func (c *Client) authenticate(ctx context.Context) error {
	endpoint, err := helpers.AppendPath(c.cfg.APIURL, "authenticate/"+c.cfg.Username)
	if err != nil {
		return blame.URLValidationFailed(c.cfg.APIURL, err)
	}

	resp, err := c.http.Do(ctx, httpclient.NewRequest(httpclient.MethodGet, endpoint.String(), nil))
	if err != nil {
		return blame.PlatformAuthFailed(c.cfg.Username, err)
	}
	if resp.StatusCode != 200 {
		return blame.PlatformAuthFailed(c.cfg.Username,
			blame.PlatformUnexpectedStatus(endpoint.String(), resp.StatusCode, string(resp.Body)))
	}

	var auth authResponse
	if err := json.Unmarshal(resp.Body, &auth); err != nil {
		return blame.PlatformAuthFailed(c.cfg.Username, blame.UnmarshalFailed(err))
	}
	if auth.Salt == "" {
		return blame.PlatformAuthFailed(c.cfg.Username, errors.New("platform returned an empty salt"))
	}

	c.mu.Lock()
	c.salt = auth.Salt
	c.mu.Unlock()
	return nil
}

// AuthHeaders returns the auth-* headers for one request. Authenticate must
// have succeeded at least once.
func (c *Client) AuthHeaders() (map[string]string, error) {
	c.mu.RLock()
	salt := c.salt
	c.mu.RUnlock()
	if salt == "" {
		return nil, blame.PlatformAuthFailed(c.cfg.Username, errNotAuthenticated)
	}

	ts := c.now().UTC().Format(authTimestampLayout)
	return map[string]string{
		constant.AuthUsernameHeader:  c.cfg.Username,
		constant.AuthTimestampHeader: ts,
		constant.AuthSaltHeader:      salt,
		constant.AuthTokenHeader:     authToken(salt, c.cfg.Password, ts),
	}, nil
}

// authToken is sha512(sha512(salt+password) + salt + ts), hex encoded.
func authToken(salt, password, ts string) string {
	passhash := sha512.Sum512([]byte(salt + password))
	token := sha512.Sum512([]byte(hex.EncodeToString(passhash[:]) + salt + ts))
	return hex.EncodeToString(token[:])
}

// RegisterMediator presents def to the platform.
func (c *Client) RegisterMediator(ctx context.Context, def *mediator.Definition) error {
	res := c.call(ctx, OpRegister, httpclient.MethodPost, "mediators", def, 200, 201)
	if res.IsError() {
		return res.Error()
	}
	return nil
}

// FetchConfig returns the configuration the platform holds for urn.
func (c *Client) FetchConfig(ctx context.Context, urn string) (configstore.Configuration, error) {
	res := callJSON[map[string]any](ctx, c, OpFetchConfig, httpclient.MethodGet, "mediators/"+urn+"/config", nil, 200)
	value, err := res.Value()
	if err != nil {
		return nil, err
	}
	if value == nil {
		return configstore.Configuration{}, nil
	}
	return configstore.FromMap(*value), nil
}

// Heartbeat reports uptime for urn. With forceConfig the platform always
// answers with the current configuration; otherwise it only does when the
// configuration changed. A nil Configuration means "no change".
func (c *Client) Heartbeat(ctx context.Context, urn string, uptime time.Duration, forceConfig bool) (configstore.Configuration, error) {
	payload := heartbeatRequest{Uptime: uptime.Seconds(), Config: forceConfig}
	res := callJSON[map[string]any](ctx, c, OpHeartbeat, httpclient.MethodPost, "mediators/"+urn+"/heartbeat", payload, 200)
	value, err := res.Value()
	if err != nil {
		return nil, blame.HeartbeatFailed(err)
	}
	if value == nil || len(*value) == 0 {
		return nil, nil
	}
	return configstore.FromMap(*value), nil
}

// call authenticates and performs one platform request through the breaker.
// Any status outside expected is a failure.
func (c *Client) call(ctx context.Context, operation, method, path string, payload any, expected ...int) result.Result[httpclient.Response] {
	endpoint, err := helpers.AppendPath(c.cfg.APIURL, path)
	if err != nil {
		b := blame.URLValidationFailed(c.cfg.APIURL, err)
		c.observe(operation, b)
		return result.NewFailure[httpclient.Response](b)
	}

	var body []byte
	if payload != nil {
		if body, err = json.Marshal(payload); err != nil {
			b := blame.MarshalFailed(err)
			c.observe(operation, b)
			return result.NewFailure[httpclient.Response](b)
		}
	}

	resp, err := circuitBreaker.Execute(c.breaker, func() (*httpclient.Response, error) {
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
		headers, err := c.AuthHeaders()
		if err != nil {
			return nil, err
		}

		req := httpclient.NewRequest(method, endpoint.String(), body)
		for key, value := range headers {
			req.WithHeader(key, value)
		}
		if body != nil {
			req.WithHeader(constant.ContentTypeHeader, constant.ContentTypeJSON.String())
		}

		resp, err := c.http.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(expected, resp.StatusCode) {
			return resp, blame.PlatformUnexpectedStatus(endpoint.String(), resp.StatusCode, string(resp.Body))
		}
		return resp, nil
	})
	c.observe(operation, err)
	if err != nil {
		return result.NewFailureWithValue(resp, toBlame(err))
	}
	return result.NewSuccess(resp)
}

// callJSON is call followed by decoding the body into T. An empty, "OK" or
// null body yields a success without a value.
func callJSON[T any](ctx context.Context, c *Client, operation, method, path string, payload any, expected ...int) result.Result[T] {
	res := c.call(ctx, operation, method, path, payload, expected...)
	if res.IsError() {
		return result.NewFailure[T](res.Error())
	}

	raw := bytes.TrimSpace(res.ToValue().Body)
	if len(raw) == 0 || bytes.Equal(raw, []byte("OK")) || bytes.Equal(raw, []byte("null")) {
		return result.NewSuccess[T](nil)
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return result.NewFailure[T](blame.UnmarshalFailed(err))
	}
	return result.NewSuccess(out)
}

func toBlame(err error) blame.Blame {
	if errors.Is(err, circuitBreaker.ErrOpen) {
		return blame.PlatformUnavailable(err)
	}
	var b blame.Blame
	if errors.As(err, &b) {
		return b
	}
	return blame.InternalServerError(err)
}

func (c *Client) observe(operation string, err error) {
	if c.observer != nil {
		c.observer.ObservePlatformCall(operation, err)
	}
}
