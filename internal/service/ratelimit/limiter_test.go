package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterBurstPerKey(t *testing.T) {
	l := New(1, 2)
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys have independent buckets")

	fixed = fixed.Add(time.Second)
	assert.True(t, l.Allow("a"), "one token refills per second")
}

func TestLimiterDisabled(t *testing.T) {
	l := New(0, 1)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("x"))
	}
}
