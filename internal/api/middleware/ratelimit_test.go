package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterWindowReset(t *testing.T) {
	current := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(time.Minute, 2)
	rl.now = func() time.Time { return current }

	ok, _ := rl.Allow("1.2.3.4")
	assert.True(t, ok)
	ok, _ = rl.Allow("1.2.3.4")
	assert.True(t, ok)

	ok, retryAfter := rl.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, 60, retryAfter)

	// A different client has its own window.
	ok, _ = rl.Allow("5.6.7.8")
	assert.True(t, ok)

	// The window reopens once it expires.
	current = current.Add(61 * time.Second)
	ok, _ = rl.Allow("1.2.3.4")
	assert.True(t, ok)
}

func TestRateLimiterCleanup(t *testing.T) {
	current := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(time.Minute, 10)
	rl.now = func() time.Time { return current }

	rl.Allow("1.2.3.4")
	rl.Allow("5.6.7.8")

	current = current.Add(2 * time.Minute)
	rl.Allow("9.9.9.9")
	rl.Cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.windows, 1)
}
