package middleware

import (
	"math"
	"net"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/blame"
	"github.com/abhissng/nhwr-mediator/utils/constant"
	"github.com/abhissng/nhwr-mediator/utils/helpers"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiter holds the limiter and the last seen time for a client
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter applies a token bucket per client address. Entries for
// clients idle longer than ttl are swept by a background goroutine that runs
// until StopCleanup.
type IPRateLimiter struct {
	clients  map[string]*clientLimiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	ttl      time.Duration
	log      *log.Log
	stop     chan struct{}
	stopOnce sync.Once
}

// NewIPRateLimiter creates a limiter allowing r events per second with bursts
// of b for each client address.
func NewIPRateLimiter(r rate.Limit, b int, ttl time.Duration, logger *log.Log) *IPRateLimiter {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	limiter := &IPRateLimiter{
		clients: make(map[string]*clientLimiter),
		rate:    r,
		burst:   b,
		ttl:     ttl,
		log:     logger,
		stop:    make(chan struct{}),
	}
	go limiter.cleanupClients()
	return limiter
}

// getLimiter retrieves or creates a limiter for a given IP address.
func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	client, exists := l.clients[ip]
	if !exists {
		client = &clientLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[ip] = client
	}
	client.lastSeen = time.Now()
	return client.limiter
}

// sweep drops clients not seen since now-ttl and returns how many were removed.
func (l *IPRateLimiter) sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for ip, client := range l.clients {
		if now.Sub(client.lastSeen) > l.ttl {
			delete(l.clients, ip)
			removed++
		}
	}
	return removed
}

func (l *IPRateLimiter) cleanupClients() {
	interval := max(l.ttl/2, time.Minute)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						l.log.Error("exception: occurred in cleanupClients",
							log.Any("panic", r), log.String("stack", string(debug.Stack())))
					}
				}()
				if removed := l.sweep(now); removed > 0 {
					l.log.Debug("Rate limiter swept idle clients", log.Int("removed", removed))
				}
			}()
		}
	}
}

// StopCleanup stops the cleanup goroutine. It is safe to call more than once.
func (l *IPRateLimiter) StopCleanup() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

// retryAfter is the number of whole seconds until one token is available.
func (l *IPRateLimiter) retryAfter() int {
	if l.rate <= 0 || l.rate == rate.Inf {
		return 1
	}
	return int(math.Ceil(1 / float64(l.rate)))
}

// Middleware returns the Gin middleware handler. The client is identified by
// the connection's remote address; configure gin's trusted proxies when the
// mediator sits behind one.
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err != nil {
			ip = c.Request.RemoteAddr
		}

		if !l.getLimiter(ip).Allow() {
			c.Header("Retry-After", strconv.Itoa(l.retryAfter()))
			c.Header("X-RateLimit-Limit", strconv.Itoa(l.burst))
			b := blame.NewBlame(blame.ErrorTooManyRequests, "too many requests", "",
				constant.ErrMiddlewares, constant.TooManyRequests)
			c.AbortWithStatusJSON(helpers.FetchHTTPStatusCode(b.FetchResponseType()), b.FetchErrorResponse())
			return
		}
		c.Next()
	}
}
