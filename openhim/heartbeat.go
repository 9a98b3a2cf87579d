package openhim

import (
	"context"
	"sync"
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/configstore"
	"github.com/abhissng/nhwr-mediator/utils/constant"
)

// Subscription is a running heartbeat. Configurations returned by the platform
// arrive on Configs; the channel is closed once the subscription stops.
type Subscription struct {
	configs chan configstore.Configuration
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// ActivateHeartbeat beats every interval (10s when interval is not positive)
// until ctx is done or Close is called. The platform is asked for the full
// configuration until the first beat succeeds. Failed beats are logged and
// retried on the next tick.
func (c *Client) ActivateHeartbeat(ctx context.Context, urn string, interval time.Duration) *Subscription {
	if interval <= 0 {
		interval = constant.DefaultHeartbeatInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		configs: make(chan configstore.Configuration, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.run(ctx, c, urn, interval)
	return s
}

func (s *Subscription) run(ctx context.Context, c *Client, urn string, interval time.Duration) {
	defer close(s.done)
	defer close(s.configs)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	force := true
	for {
		cfg, err := c.Heartbeat(ctx, urn, c.Uptime(), force)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			c.log.Warn(constant.HeartbeatFailed, log.String("urn", urn), log.Err(err))
		default:
			force = false
			if cfg != nil {
				select {
				case s.configs <- cfg:
				case <-ctx.Done():
					return
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Configs delivers every configuration pushed by the platform.
func (s *Subscription) Configs() <-chan configstore.Configuration {
	return s.configs
}

// Done is closed once the heartbeat goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close stops the heartbeat and waits for it to exit. It is idempotent.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
	<-s.done
}
