package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter applies a fixed-window per-client request cap. Windows are kept
// in memory; this is per-process, matching the single-instance deployment.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow

	window      time.Duration
	maxRequests int
	now         func() time.Time
}

type rateWindow struct {
	count     int
	resetTime time.Time
}

// NewRateLimiter creates a limiter allowing maxRequests per window per
// client IP.
func NewRateLimiter(window time.Duration, maxRequests int) *RateLimiter {
	return &RateLimiter{
		windows:     make(map[string]*rateWindow),
		window:      window,
		maxRequests: maxRequests,
		now:         time.Now,
	}
}

// Allow records one request for key and reports whether it is within the
// limit. The second return value is the seconds until the window resets.
func (rl *RateLimiter) Allow(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || now.After(w.resetTime) {
		w = &rateWindow{resetTime: now.Add(rl.window)}
		rl.windows[key] = w
	}

	w.count++
	retryAfter := int(w.resetTime.Sub(now).Seconds() + 0.5)
	return w.count <= rl.maxRequests, retryAfter
}

// Cleanup drops expired windows.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, w := range rl.windows {
		if now.After(w.resetTime) {
			delete(rl.windows, key)
		}
	}
}

// Handler is the gin middleware wrapping the limiter.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter := rl.Allow(c.ClientIP())
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":    false,
				"message":    "Too many requests",
				"data":       nil,
				"retryAfter": retryAfter,
			})
			return
		}
		c.Next()
	}
}
