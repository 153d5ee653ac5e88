package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func TestMemoryAllowsUpToLimit(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	m := NewMemory(clock.Now)

	for i := range 3 {
		res, err := m.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "attempt %d", i+1)
		assert.Equal(t, 2-i, res.Remaining)
		assert.Equal(t, clock.Now().Add(time.Minute), res.ResetAt)
	}

	res, err := m.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.Equal(t, time.Minute, res.RetryAfter)
}

func TestMemoryWindowSlides(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	m := NewMemory(clock.Now)

	_, _ = m.Allow(ctx, "k", 2, time.Minute)
	clock.Advance(30 * time.Second)
	_, _ = m.Allow(ctx, "k", 2, time.Minute)

	res, _ := m.Allow(ctx, "k", 2, time.Minute)
	require.False(t, res.Allowed)
	assert.Equal(t, 30*time.Second, res.RetryAfter)

	clock.Advance(30 * time.Second)
	res, _ = m.Allow(ctx, "k", 2, time.Minute)
	assert.True(t, res.Allowed, "first attempt left the window")
	assert.Zero(t, res.Remaining)
}

func TestMemoryKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(newClock().Now)

	res, _ := m.Allow(ctx, "a", 1, time.Minute)
	require.True(t, res.Allowed)
	res, _ = m.Allow(ctx, "a", 1, time.Minute)
	require.False(t, res.Allowed)

	res, _ = m.Allow(ctx, "b", 1, time.Minute)
	assert.True(t, res.Allowed)
}

func TestMemoryPurgeExpired(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	m := NewMemory(clock.Now)

	_, _ = m.Allow(ctx, "short", 5, time.Second)
	_, _ = m.Allow(ctx, "long", 5, time.Hour)
	clock.Advance(2 * time.Second)

	n, err := m.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryConcurrentAttemptsNeverExceedLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(newClock().Now)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := m.Allow(ctx, "k", 10, time.Minute)
			if err == nil && res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
}
