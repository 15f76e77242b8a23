package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLGetSet(t *testing.T) {
	c := NewTTL[string](time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", "v")
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestTTLExpiry(t *testing.T) {
	c := NewTTL[int](time.Minute)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	c.Set("k", 1)

	c.now = func() time.Time { return base.Add(59 * time.Second) }
	_, ok := c.Get("k")
	assert.True(t, ok)

	c.now = func() time.Time { return base.Add(61 * time.Second) }
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCleanup(t *testing.T) {
	c := NewTTL[int](time.Minute)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	c.Set("a", 1)
	c.Set("b", 2)

	c.now = func() time.Time { return base.Add(30 * time.Second) }
	c.Set("c", 3)

	c.now = func() time.Time { return base.Add(70 * time.Second) }
	removed := c.Cleanup()

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("c")
	assert.True(t, ok)
}
