// Package lifecycle drives the mediator from start-up to serving: it
// registers with the platform, loads the first configuration, opens the
// listener and keeps the configuration store current until shutdown.
package lifecycle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/blame"
	"github.com/abhissng/nhwr-mediator/configstore"
	"github.com/abhissng/nhwr-mediator/mediator"
	"github.com/abhissng/nhwr-mediator/openhim"
	"github.com/abhissng/nhwr-mediator/utils/constant"
	"github.com/abhissng/nhwr-mediator/utils/helpers"
)

// State of the mediator.
type State string

const (
	Unregistered   State = "Unregistered"
	Registering    State = "Registering"
	FetchingConfig State = "FetchingConfig"
	Serving        State = "Serving"
	Failed         State = "Failed"
)

func (s State) String() string {
	return string(s)
}

// Sources of a configuration replacement, as reported to Metrics.
const (
	SourceInitial   = "initial"
	SourceHeartbeat = "heartbeat"
	SourceStatic    = "static"
	SourceFile      = "file"
)

// Platform is the part of the OpenHIM core the lifecycle talks to.
type Platform interface {
	RegisterMediator(ctx context.Context, def *mediator.Definition) error
	FetchConfig(ctx context.Context, urn string) (configstore.Configuration, error)
	ActivateHeartbeat(ctx context.Context, urn string, interval time.Duration) *openhim.Subscription
}

// Server is the HTTP listener of the mediator.
type Server interface {
	Start() error
	Errors() <-chan error
	Shutdown(ctx context.Context) error
}

// Metrics counts configuration replacements.
type Metrics interface {
	ObserveConfigReplaced(source string)
}

// Lifecycle owns the write path of the configuration store.
type Lifecycle struct {
	def      *mediator.Definition
	store    *configstore.Store
	server   Server
	platform Platform
	metrics  Metrics
	log      *log.Log

	register          bool
	heartbeat         bool
	heartbeatInterval time.Duration
	watchFile         string
	shutdownTimeout   time.Duration

	mu    sync.RWMutex
	state State
}

// New prepares a lifecycle for def. Without WithPlatform registration is
// disabled and the store is seeded from the definition's own configuration.
func New(def *mediator.Definition, store *configstore.Store, srv Server, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		def:               def,
		store:             store,
		server:            srv,
		heartbeatInterval: constant.DefaultHeartbeatInterval,
		shutdownTimeout:   constant.ServerDefaultGracefulTime,
		state:             Unregistered,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = log.NewBasicLogger(helpers.IsProdEnvironment())
		l.log.Warn("Logger not provided, using default logger")
	}
	if l.platform == nil {
		l.register = false
	}
	return l
}

// State is the current state. Safe for concurrent use.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *Lifecycle) setState(s State) {
	l.mu.Lock()
	prev := l.state
	l.state = s
	l.mu.Unlock()
	l.log.Info(constant.LifecycleTransition, log.String("from", prev.String()), log.String("to", s.String()))
}

// Run starts the mediator and blocks until ctx is done or the listener fails.
// Registration, initial fetch and listener failures leave the lifecycle in
// Failed and are returned. A cancelled ctx is a clean stop and returns nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	if l.register {
		if err := l.bootstrap(ctx); err != nil {
			l.setState(Failed)
			return err
		}
	} else {
		l.apply(l.def.StaticConfig(), SourceStatic)
	}

	if err := l.server.Start(); err != nil {
		l.setState(Failed)
		return err
	}
	l.setState(Serving)

	updates, source, stop := l.subscribe(ctx)
	defer stop()

	serveErrs := l.server.Errors()
	for {
		select {
		case <-ctx.Done():
			stop()
			return l.shutdown(ctx)
		case err, ok := <-serveErrs:
			if !ok {
				serveErrs = nil
				continue
			}
			l.setState(Failed)
			stop()
			return err
		case cfg, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			l.apply(cfg, source)
		}
	}
}

// bootstrap runs Registering and FetchingConfig.
func (l *Lifecycle) bootstrap(ctx context.Context) error {
	l.setState(Registering)
	if err := l.platform.RegisterMediator(ctx, l.def); err != nil {
		l.log.Error(constant.RegistrationFailed, log.String("urn", l.def.URN), log.Err(err))
		return blame.RegistrationFailed(err)
	}
	l.log.Info("Successfully registered mediator!", log.String("urn", l.def.URN))

	l.setState(FetchingConfig)
	cfg, err := l.platform.FetchConfig(ctx, l.def.URN)
	if err != nil {
		l.log.Error(constant.InitialConfigFailed, log.String("urn", l.def.URN), log.Err(err))
		return blame.InitialConfigFetchFailed(err)
	}
	l.apply(cfg, SourceInitial)
	return nil
}

// subscribe opens the channel that keeps the store current: the heartbeat
// when registered, the definition file watch otherwise. stop is idempotent.
func (l *Lifecycle) subscribe(ctx context.Context) (<-chan configstore.Configuration, string, func()) {
	switch {
	case l.register && l.heartbeat:
		sub := l.platform.ActivateHeartbeat(ctx, l.def.URN, l.heartbeatInterval)
		return sub.Configs(), SourceHeartbeat, sub.Close
	case !l.register && l.watchFile != "":
		w, err := WatchDefinition(l.watchFile, l.log)
		if err != nil {
			l.log.Warn("Unable to watch mediator definition", log.String("path", l.watchFile), log.Err(err))
			return nil, "", func() {}
		}
		return w.Configs(), SourceFile, func() { _ = w.Close() }
	default:
		return nil, "", func() {}
	}
}

// apply replaces the stored configuration wholesale.
func (l *Lifecycle) apply(cfg configstore.Configuration, source string) {
	if cfg == nil {
		cfg = configstore.Configuration{}
	}
	version := l.store.Replace(cfg)

	msg := constant.ReceivedConfig
	switch source {
	case SourceInitial:
		msg = constant.ReceivedInitConfig
	case SourceFile:
		msg = constant.StaticConfigReloaded
	}
	l.log.Info(msg,
		log.String("source", source),
		log.Any("version", version),
		log.Any("config", helpers.SanitizeAny(map[string]map[string]any(cfg))),
	)
	if l.metrics != nil {
		l.metrics.ObserveConfigReplaced(source)
	}
}

func (l *Lifecycle) shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.shutdownTimeout)
	defer cancel()
	if err := l.server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
