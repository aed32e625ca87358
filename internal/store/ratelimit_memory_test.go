package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is advanced by hand.
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

func newClockedStore() (*RateLimitMemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewRateLimitMemoryStore()
	s.now = clock.Now

	return s, clock
}

func TestRateLimitMemoryStore_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("counts requests per key", func(t *testing.T) {
		s, clock := newClockedStore()

		for want := int64(1); want <= 3; want++ {
			count, err := s.Record(ctx, "key1", time.Minute)

			require.NoError(t, err)
			assert.Equal(t, want, count)

			clock.Advance(time.Second)
		}

		count, err := s.Record(ctx, "key2", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "key2 should have its own counter")
	})

	t.Run("window slides", func(t *testing.T) {
		s, clock := newClockedStore()

		_, _ = s.Record(ctx, "k", time.Minute)
		clock.Advance(40 * time.Second)
		_, _ = s.Record(ctx, "k", time.Minute)
		clock.Advance(30 * time.Second)

		count, err := s.Record(ctx, "k", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(2), count, "first request is outside the window")
	})

	t.Run("request exactly at the window edge has expired", func(t *testing.T) {
		s, clock := newClockedStore()

		_, _ = s.Record(ctx, "k", time.Minute)
		clock.Advance(time.Minute)

		count, _ := s.Record(ctx, "k", time.Minute)

		assert.Equal(t, int64(1), count)
	})
}

func TestRateLimitMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	s, clock := newClockedStore()

	_, _ = s.Record(ctx, "idle", time.Minute)
	clock.Advance(2 * time.Hour)
	_, _ = s.Record(ctx, "active", time.Minute)

	removed := s.Sweep(time.Hour)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Keys())

	count, _ := s.Record(ctx, "active", time.Minute)
	assert.Equal(t, int64(2), count, "sweep keeps recent keys intact")
}

func TestRateLimitMemoryStore_Run(t *testing.T) {
	s := NewRateLimitMemoryStore()
	_, _ = s.Record(context.Background(), "k", time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		s.Run(ctx, 5*time.Millisecond, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.Keys() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
