// Package graceful ties process signals to a context and runs the ordered
// clean-up steps once the mediator stops.
package graceful

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/log"
)

// Shutdowner is an interface that defines a Shutdown method.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// ShutdownFunc is a function type that matches the Shutdown method signature.
type ShutdownFunc func(ctx context.Context) error

// Shutdown implements the Shutdowner interface for ShutdownFunc.
func (f ShutdownFunc) Shutdown(ctx context.Context) error {
	return f(ctx)
}

// NotifyContext is cancelled on SIGINT or SIGTERM.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

type phase struct {
	name string
	step Shutdowner
}

// Coordinator runs named shutdown phases in the order they were added.
type Coordinator struct {
	log     *log.Log
	timeout time.Duration
	once    sync.Once
	phases  []phase
}

// NewCoordinator bounds the whole shutdown by timeout.
func NewCoordinator(logger *log.Log, timeout time.Duration) *Coordinator {
	return &Coordinator{log: logger, timeout: timeout}
}

// Add appends a phase. nil steps are ignored.
func (c *Coordinator) Add(name string, step Shutdowner) {
	if step == nil {
		return
	}
	c.phases = append(c.phases, phase{name: name, step: step})
}

// Run executes every phase once, even when an earlier one fails, and returns
// the joined errors. Later calls are no-ops.
func (c *Coordinator) Run(ctx context.Context) error {
	var runErr error
	c.once.Do(func() {
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		for _, p := range c.phases {
			c.log.Debug("Shutdown phase starting", log.String("phase", p.name))
			if err := p.step.Shutdown(ctx); err != nil {
				runErr = errors.Join(runErr, err)
				c.log.Warn("Shutdown phase failed", log.String("phase", p.name), log.Err(err))
			}
		}
		c.log.Info("Service stopped")
	})
	return runErr
}
