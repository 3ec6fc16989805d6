package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vrroom/booking-bff/internal/pkg/response"
)

const limiterIdleTTL = 10 * time.Minute

// RateLimiter hands out a token bucket per key.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute events per key with the given burst.
func NewRateLimiter(perMinute float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(perMinute / 60),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether an event for key may happen now.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
		l.evict(now)
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// RetryAfter is the time one token takes to refill.
func (l *RateLimiter) RetryAfter() time.Duration {
	if l.limit <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(l.limit))
}

// evict must be called with mu held.
func (l *RateLimiter) evict(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(l.limiters, key)
		}
	}
}

// RateLimit limits requests per session (or client IP outside a session).
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := GetSessionID(r.Context())
			if key == "" {
				key = getClientIP(r)
			}
			if !limiter.Allow(key) {
				response.TooManyRequests(w, limiter.RetryAfter())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
