package lifecycle

import (
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/log"
)

// Option configures a Lifecycle.
type Option func(*Lifecycle)

// WithLogger sets the log
func WithLogger(l *log.Log) Option {
	return func(lc *Lifecycle) {
		lc.log = l
	}
}

// WithPlatform enables registration against p.
func WithPlatform(p Platform) Option {
	return func(lc *Lifecycle) {
		lc.platform = p
		lc.register = p != nil
	}
}

// WithHeartbeat keeps the configuration current through heartbeats. It only
// applies when registration is enabled.
func WithHeartbeat(enabled bool, interval time.Duration) Option {
	return func(lc *Lifecycle) {
		lc.heartbeat = enabled
		if interval > 0 {
			lc.heartbeatInterval = interval
		}
	}
}

// WithDefinitionWatch reloads the configuration whenever the definition file
// at path changes. It only applies when registration is disabled.
func WithDefinitionWatch(path string) Option {
	return func(lc *Lifecycle) {
		lc.watchFile = path
	}
}

// WithMetrics counts configuration replacements.
func WithMetrics(m Metrics) Option {
	return func(lc *Lifecycle) {
		lc.metrics = m
	}
}

// WithShutdownTimeout bounds the server shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(lc *Lifecycle) {
		if d > 0 {
			lc.shutdownTimeout = d
		}
	}
}
