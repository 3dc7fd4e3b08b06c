package middlewarectx

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_EvictsIdleVisitorsPeriodically(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	l := NewRateLimiter(1, 1)
	l.now = func() time.Time { return clock }
	l.lastCleanup = start

	for i := 0; i < 5; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	assert.Len(t, l.visitors, 5)

	clock = start.Add(limiterIdleTTL + time.Second)
	l.lastCleanup = clock
	l.Allow("10.0.1.1")
	assert.Len(t, l.visitors, 6, "no sweep before the cleanup interval elapses")

	clock = clock.Add(cleanupInterval)
	l.Allow("10.0.1.1")
	assert.Len(t, l.visitors, 1)
	assert.Contains(t, l.visitors, "10.0.1.1")
	assert.Equal(t, clock, l.lastCleanup)
}
