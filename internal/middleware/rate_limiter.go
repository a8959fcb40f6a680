package middleware

import (
	"fmt"
	"strings"
	"sync"
	"time"

	apierrors "mockbank/internal/errors"
	"mockbank/internal/handlers"
	"mockbank/internal/services"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter is a per-IP token bucket applied to every request
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
}

func NewIPRateLimiter(requestsPerSecond, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Middleware rejects requests once the caller's bucket is empty
func (l *IPRateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.getVisitor(c.RealIP()).Allow() {
				return handlers.SendError(c, apierrors.SystemRateLimitExceeded)
			}
			return next(c)
		}
	}
}

func (l *IPRateLimiter) getVisitor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(l.rps, l.burst)
		l.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// Cleanup forgets visitors idle for longer than idle
func (l *IPRateLimiter) Cleanup(idle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, v := range l.visitors {
		if time.Since(v.lastSeen) > idle {
			delete(l.visitors, ip)
		}
	}
}

// FixedWindowLimiter counts requests per key in one-minute windows
type FixedWindowLimiter struct {
	mu      sync.Mutex
	counts  map[string]int
	windows map[string]int64
	now     func() time.Time
}

func NewFixedWindowLimiter() *FixedWindowLimiter {
	return &FixedWindowLimiter{
		counts:  make(map[string]int),
		windows: make(map[string]int64),
		now:     time.Now,
	}
}

// Allow increments the counter for identity and route in the current minute
// and reports whether it is still within limit
func (l *FixedWindowLimiter) Allow(identity, route string, limit int) bool {
	minute := l.now().Unix() / 60
	key := fmt.Sprintf("rl:%s:%s:%d", identity, route, minute)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.counts[key]++
	l.windows[key] = minute
	return l.counts[key] <= limit
}

// Cleanup drops counters from windows before the current one
func (l *FixedWindowLimiter) Cleanup() {
	minute := l.now().Unix() / 60

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, window := range l.windows {
		if window < minute {
			delete(l.windows, key)
			delete(l.counts, key)
		}
	}
}

// RouteRateLimit limits one route to limitPerMin requests per caller per minute.
// The caller is identified by the tail of its bearer token, else its IP.
func RouteRateLimit(limiter *FixedWindowLimiter, route string, limitPerMin int, metrics services.MetricsRecorderInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow(callerIdentity(c), route, limitPerMin) {
				metrics.IncrementCounter(services.MetricRateLimitRejected, map[string]string{"route": route})
				return handlers.SendError(c, apierrors.SystemRateLimitExceeded,
					apierrors.WithRateLimit(limitPerMin, route))
			}
			return next(c)
		}
	}
}

func callerIdentity(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return lastN(auth, 24)
	}
	return c.RealIP()
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
