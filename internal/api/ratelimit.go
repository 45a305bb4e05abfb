package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig is the per-IP request budget. A player holding a key posts
// input several times a second and a viewer polls /api/state at most at the
// broadcast rate, so the default budget leaves room for both.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	IdleTimeout       time.Duration // forget clients silent for this long
}

// DefaultRateLimitConfig is used when the router builds its own limiter
var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerSecond: 30,
	Burst:             60,
	IdleTimeout:       10 * time.Minute,
}

type rateClient struct {
	limiter *rate.Limiter
	seen    time.Time
}

// IPRateLimiter keeps one token bucket per client address
type IPRateLimiter struct {
	cfg RateLimitConfig

	mu      sync.Mutex
	clients map[string]*rateClient

	allowed  atomic.Uint64
	rejected atomic.Uint64

	done     chan struct{}
	stopOnce sync.Once
}

// NewIPRateLimiter starts a limiter and its idle sweep. Zero fields fall back
// to DefaultRateLimitConfig.
func NewIPRateLimiter(cfg RateLimitConfig) *IPRateLimiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRateLimitConfig.RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultRateLimitConfig.Burst
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultRateLimitConfig.IdleTimeout
	}

	rl := &IPRateLimiter{
		cfg:     cfg,
		clients: make(map[string]*rateClient),
		done:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Stop ends the idle sweep
func (rl *IPRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *IPRateLimiter) sweep() {
	ticker := time.NewTicker(rl.cfg.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.cleanup(now)
		}
	}
}

// cleanup forgets clients not seen within IdleTimeout of now
func (rl *IPRateLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-rl.cfg.IdleTimeout)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, c := range rl.clients {
		if c.seen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// Allow spends one token from ip's bucket
func (rl *IPRateLimiter) Allow(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	c, ok := rl.clients[ip]
	if !ok {
		c = &rateClient{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)}
		rl.clients[ip] = c
	}
	c.seen = now
	rl.mu.Unlock()

	if c.limiter.AllowN(now, 1) {
		rl.allowed.Add(1)
		return true
	}
	rl.rejected.Add(1)
	return false
}

// Middleware answers 429 once a client's bucket is empty
func (rl *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.Allow(ClientIP(r)) {
			next.ServeHTTP(w, r)
			return
		}
		RecordConnectionRejected("rate_limit")
		w.Header().Set("Retry-After", "1")
		writeError(w, "rate limited", http.StatusTooManyRequests)
	})
}

// RateLimitStats are limiter counters for /api/stats
type RateLimitStats struct {
	Allowed  uint64 `json:"allowed"`
	Rejected uint64 `json:"rejected"`
}

// GetStats returns the limiter counters
func (rl *IPRateLimiter) GetStats() RateLimitStats {
	return RateLimitStats{
		Allowed:  rl.allowed.Load(),
		Rejected: rl.rejected.Load(),
	}
}

// ClientIP is the first X-Forwarded-For hop, then X-Real-IP, then the peer
// address. The headers are only trustworthy behind a proxy that sets them.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// SlotLimiter caps concurrent WebSocket connections per client address
type SlotLimiter struct {
	limit int

	mu    sync.Mutex
	slots map[string]int
}

// NewSlotLimiter allows up to limit open slots per address
func NewSlotLimiter(limit int) *SlotLimiter {
	return &SlotLimiter{limit: limit, slots: make(map[string]int)}
}

// Acquire takes a slot for ip, or reports false when ip is at the cap
func (l *SlotLimiter) Acquire(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.slots[ip] >= l.limit {
		return false
	}
	l.slots[ip]++
	return true
}

// Release returns a slot taken by Acquire
func (l *SlotLimiter) Release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch n := l.slots[ip]; {
	case n > 1:
		l.slots[ip] = n - 1
	case n == 1:
		delete(l.slots, ip)
	}
}

// Count returns the open slots for ip
func (l *SlotLimiter) Count(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slots[ip]
}
