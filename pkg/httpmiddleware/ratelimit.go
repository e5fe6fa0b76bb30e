package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	// Max requests per Window; also the burst size.
	Max    int
	Window time.Duration
	// KeyFunc identifies the client. Defaults to ClientIP.
	KeyFunc func(*http.Request) string
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiter struct {
	cfg   RateLimitConfig
	every rate.Limit

	mu       sync.Mutex
	visitors map[string]*visitor
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientIP
	}
	if cfg.Max <= 0 {
		cfg.Max = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &limiter{
		cfg:      cfg,
		every:    rate.Every(cfg.Window / time.Duration(cfg.Max)),
		visitors: make(map[string]*visitor),
	}
}

// reserve takes a token for key. It returns the tokens left and, when the
// bucket is empty, how long until the next one.
func (l *limiter) reserve(key string, now time.Time) (remaining int, wait time.Duration) {
	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.cfg.Max)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	if !v.limiter.AllowN(now, 1) {
		r := v.limiter.ReserveN(now, 1)
		wait = r.DelayFrom(now)
		r.CancelAt(now)
		return 0, max(wait, time.Millisecond)
	}
	return int(math.Max(0, math.Floor(v.limiter.TokensAt(now)))), 0
}

// evict drops clients idle for longer than a window.
func (l *limiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.cfg.Window {
			delete(l.visitors, key)
		}
	}
}

// RateLimit rejects clients exceeding cfg with 429 and a Retry-After header.
// Every response carries X-RateLimit-Limit and X-RateLimit-Remaining.
func RateLimit(cfg RateLimitConfig) Middleware {
	return newLimiter(cfg).middleware()
}

// RateLimitWithCleanup is RateLimit that also evicts idle clients every
// window until ctx is done.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	l := newLimiter(cfg)
	go func() {
		ticker := time.NewTicker(l.cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.evict(now)
			}
		}
	}()
	return l.middleware()
}

func (l *limiter) middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, wait := l.reserve(l.cfg.KeyFunc(r), time.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Max))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if wait > 0 {
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first X-Forwarded-For address, then X-Real-IP, then
// the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
