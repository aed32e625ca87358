package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/gistcdn/internal/ratelimit"
)

// RateLimitMemoryStore keeps sliding-window request timestamps per key in
// process memory. Counts are local to one server instance.
type RateLimitMemoryStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	now      func() time.Time
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Record adds a request to key and returns how many fall inside window.
func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	valid := prune(s.requests[key], now.Add(-window))
	valid = append(valid, now)
	s.requests[key] = valid

	return int64(len(valid)), nil
}

// Sweep drops keys with no request newer than maxWindow and returns how many
// were removed. Without it, one-off clients stay in memory forever.
func (s *RateLimitMemoryStore) Sweep(maxWindow time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxWindow)
	removed := 0

	for key, timestamps := range s.requests {
		if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(cutoff) {
			delete(s.requests, key)

			removed++
		}
	}

	return removed
}

// Run sweeps every interval until ctx is done.
func (s *RateLimitMemoryStore) Run(ctx context.Context, interval, maxWindow time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(maxWindow)
		}
	}
}

// Keys returns the number of tracked keys.
func (s *RateLimitMemoryStore) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

// prune drops timestamps at or before cutoff. Timestamps are appended in
// order, so the survivors are a suffix.
func prune(timestamps []time.Time, cutoff time.Time) []time.Time {
	for i, ts := range timestamps {
		if ts.After(cutoff) {
			return append([]time.Time(nil), timestamps[i:]...)
		}
	}

	return make([]time.Time, 0, 1)
}

var _ ratelimit.Store = (*RateLimitMemoryStore)(nil)
