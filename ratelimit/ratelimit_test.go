package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_AllowsUpToCeiling(t *testing.T) {
	l := New()

	for i := 0; i < difyPerWindow; i++ {
		assert.True(t, l.Allow(ServiceDify, "user-1"), "request %d should be allowed", i+1)
	}

	require.False(t, l.Allow(ServiceDify, "user-1"), "request over the ceiling should be rejected")
	assert.Positive(t, l.SecondsUntilReset(ServiceDify, "user-1"),
		"retry-after must be positive once Allow returns false")
}

func TestLimiter_UnknownServiceUsesDefaultCeiling(t *testing.T) {
	l := New()

	for i := 0; i < defaultPerWindow; i++ {
		assert.True(t, l.Allow("mystery-service", "user-1"))
	}
	assert.False(t, l.Allow("mystery-service", "user-1"))
}

func TestLimiter_IsolatesKeys(t *testing.T) {
	l := New()

	// Exhaust one key.
	for i := 0; i < difyPerWindow; i++ {
		require.True(t, l.Allow(ServiceDify, "user-1"))
	}
	require.False(t, l.Allow(ServiceDify, "user-1"))

	// A different user and a different service are unaffected.
	assert.True(t, l.Allow(ServiceDify, "user-2"))
	assert.True(t, l.Allow(ServiceMemory, "user-1"))
}

func TestLimiter_WindowResets(t *testing.T) {
	l := New()
	current := time.Now()
	l.now = func() time.Time { return current }

	for i := 0; i < difyPerWindow; i++ {
		require.True(t, l.Allow(ServiceDify, "user-1"))
	}
	require.False(t, l.Allow(ServiceDify, "user-1"))

	// Advance past the window boundary; the counter starts fresh.
	current = current.Add(Window + time.Second)
	assert.True(t, l.Allow(ServiceDify, "user-1"))
	assert.Equal(t, difyPerWindow-1, l.Remaining(ServiceDify, "user-1"))
}

func TestLimiter_SecondsUntilReset(t *testing.T) {
	l := New()
	current := time.Now()
	l.now = func() time.Time { return current }

	assert.Equal(t, 0, l.SecondsUntilReset(ServiceMemory, "user-1"),
		"no active window means no wait")

	require.True(t, l.Allow(ServiceMemory, "user-1"))
	assert.Equal(t, 60, l.SecondsUntilReset(ServiceMemory, "user-1"))

	current = current.Add(45 * time.Second)
	assert.Equal(t, 15, l.SecondsUntilReset(ServiceMemory, "user-1"))

	// Sub-second remainders round up rather than reporting zero wait.
	current = current.Add(14*time.Second + 500*time.Millisecond)
	assert.Equal(t, 1, l.SecondsUntilReset(ServiceMemory, "user-1"))

	current = current.Add(time.Second)
	assert.Equal(t, 0, l.SecondsUntilReset(ServiceMemory, "user-1"),
		"expired window means no wait")
}

func TestLimiter_Remaining(t *testing.T) {
	l := New()

	assert.Equal(t, memoryPerWindow, l.Remaining(ServiceMemory, "user-1"))
	require.True(t, l.Allow(ServiceMemory, "user-1"))
	assert.Equal(t, memoryPerWindow-1, l.Remaining(ServiceMemory, "user-1"))
}

func TestLimiter_ConcurrentSameKeyNeverOvershoots(t *testing.T) {
	l := New()

	const workers = 8
	const perWorker = 20 // 160 attempts against a ceiling of 30

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if l.Allow(ServiceDify, "user-1") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, difyPerWindow, allowed,
		"concurrent callers must collectively observe exactly the ceiling")
}

func TestLimiter_SweepDropsIdleWindows(t *testing.T) {
	l := New()
	current := time.Now()
	l.now = func() time.Time { return current }

	require.True(t, l.Allow(ServiceDify, "user-1"))
	require.True(t, l.Allow(ServiceDify, "user-2"))

	// user-1 goes idle; user-2 stays active.
	current = current.Add(idleExpiry + time.Minute)
	require.True(t, l.Allow(ServiceDify, "user-2"))

	l.Sweep()

	_, ok := l.windows.Load(key(ServiceDify, "user-1"))
	assert.False(t, ok, "idle window should be swept")
	_, ok = l.windows.Load(key(ServiceDify, "user-2"))
	assert.True(t, ok, "active window should survive the sweep")
}
