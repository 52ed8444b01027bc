package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepInterval bounds how often expired windows are swept. The sweep is
// lazy: it runs on the next Incr after the interval elapses, so it never
// adds a timer goroutine or latency spikes to idle processes.
const sweepInterval = time.Minute

type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore is an in-process WindowStore. Counters are not durable: a
// restart or horizontal scale-out resets them, which is an accepted
// limitation of single-instance deployments.
type MemoryStore struct {
	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryStore creates an empty in-memory window store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Incr counts a request against the key's current window, starting a new
// window when none exists or the previous one has expired. Increments for
// the same key serialize under the store mutex so concurrent requests from
// one identity can never undercount.
func (s *MemoryStore) Incr(_ context.Context, key string, windowDur time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	w := s.windows[key]
	if w == nil || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(windowDur)}
		s.windows[key] = w
	}
	w.count++

	return w.count, w.resetAt, nil
}

// Len reports the number of live windows. Used by housekeeping logs.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for key, w := range s.windows {
		if now.After(w.resetAt) {
			delete(s.windows, key)
		}
	}
}
