package middleware

import (
	"sync"
	"time"

	"github.com/akolanti/DoubtSolver/internal/config"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL   = 10 * time.Minute
	limiterSweepSize = 1024
)

var limiterInstance = newLimiterFromOptions(Options{})

func newLimiterFromOptions(opts Options) *IPRateLimiter {
	perSecond, burst := opts.RequestsPerSecond, opts.Burst
	if perSecond <= 0 {
		perSecond = config.RATE_LIMIT_PER_SECOND
	}
	if burst <= 0 {
		burst = config.BURST_RATE_LIMIT_PER_SECOND
	}
	return NewIPRateLimiter(rate.Limit(perSecond), burst)
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client address. Once the table passes
// limiterSweepSize entries, clients idle for limiterIdleTTL are dropped.
type IPRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	rateLimit rate.Limit
	burstRate int
	now       func() time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		clients:   make(map[string]*clientLimiter),
		rateLimit: r,
		burstRate: b,
		now:       time.Now,
	}
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	now := i.now()
	i.mu.Lock()
	defer i.mu.Unlock()

	client, exists := i.clients[ip]
	if !exists {
		if len(i.clients) >= limiterSweepSize {
			i.sweepLocked(now)
		}
		client = &clientLimiter{limiter: rate.NewLimiter(i.rateLimit, i.burstRate)}
		i.clients[ip] = client
	}
	client.lastSeen = now
	return client.limiter
}

func (i *IPRateLimiter) sweepLocked(now time.Time) {
	for ip, client := range i.clients {
		if now.Sub(client.lastSeen) > limiterIdleTTL {
			delete(i.clients, ip)
		}
	}
}
