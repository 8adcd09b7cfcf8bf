package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(limit int, window time.Duration, start time.Time) (*Limiter, *time.Time) {
	l := New(limit, window)
	current := start
	l.now = func() time.Time { return current }
	return l, &current
}

func TestAllowUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(60, time.Minute, time.Unix(1000, 0))

	for i := 0; i < 60; i++ {
		ok, _ := l.Allow("10.0.0.1")
		require.True(t, ok, "request %d should be admitted", i+1)
	}

	ok, retryAfter := l.Allow("10.0.0.1")
	assert.False(t, ok, "61st request within the window must be rejected")
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestSlidingWindowReadmission(t *testing.T) {
	start := time.Unix(1000, 0)
	l, now := newTestLimiter(2, time.Minute, start)

	ok, _ := l.Allow("client")
	require.True(t, ok)
	*now = start.Add(30 * time.Second)
	ok, _ = l.Allow("client")
	require.True(t, ok)

	ok, retryAfter := l.Allow("client")
	require.False(t, ok)
	// Oldest stamp is 30s old; it leaves the window in another 30s.
	assert.Equal(t, 30*time.Second, retryAfter)

	// 61s after the first request it has slid out, so one slot frees up.
	*now = start.Add(61 * time.Second)
	ok, _ = l.Allow("client")
	assert.True(t, ok, "identity must be re-admitted once the window slides")

	// But the 30s-old stamp still counts, so the next one is rejected again.
	ok, _ = l.Allow("client")
	assert.False(t, ok)
}

func TestIdentitiesAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute, time.Unix(1000, 0))

	ok, _ := l.Allow("a")
	require.True(t, ok)
	ok, _ = l.Allow("a")
	require.False(t, ok)

	ok, _ = l.Allow("b")
	assert.True(t, ok, "a throttled identity must not affect others")
}

func TestConcurrentBurstNeverOverAdmits(t *testing.T) {
	const limit = 60
	l := New(limit, time.Minute)

	var admitted int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("burst"); ok {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(limit), admitted)
}

func TestEvictIdleIdentities(t *testing.T) {
	start := time.Unix(1000, 0)
	l, now := newTestLimiter(10, time.Minute, start)

	l.Allow("old")
	*now = start.Add(10 * time.Minute)
	l.Allow("fresh")

	l.evictIdle()

	assert.Equal(t, 1, l.size(), "idle identity should be evicted")
	ok, _ := l.Allow("old")
	assert.True(t, ok, "evicted identity starts with a clean window")
}
