package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testPolicy(max int) Policy {
	return Policy{Class: "test", MaxRequests: max, Window: time.Minute}
}

func TestLimitBoundary(t *testing.T) {
	limiter := New(NewMemoryStore(), zerolog.Nop())
	policy := testPolicy(3)

	for i := 1; i <= 3; i++ {
		result := limiter.Check(context.Background(), "10.0.0.1", policy)
		if !result.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
		if want := 3 - i; result.Remaining != want {
			t.Fatalf("request %d: expected remaining %d, got %d", i, want, result.Remaining)
		}
	}

	result := limiter.Check(context.Background(), "10.0.0.1", policy)
	if result.Allowed {
		t.Fatal("4th request should be rejected")
	}
	if result.Remaining != 0 {
		t.Fatalf("expected remaining 0 on rejection, got %d", result.Remaining)
	}
	if result.RetryAfterSeconds <= 0 {
		t.Fatalf("expected positive retry-after, got %d", result.RetryAfterSeconds)
	}
}

func TestWindowReset(t *testing.T) {
	store := NewMemoryStore()
	limiter := New(store, zerolog.Nop())
	policy := testPolicy(2)

	now := time.Now()
	store.now = func() time.Time { return now }
	limiter.now = store.now

	limiter.Check(context.Background(), "10.0.0.1", policy)
	limiter.Check(context.Background(), "10.0.0.1", policy)
	if limiter.Check(context.Background(), "10.0.0.1", policy).Allowed {
		t.Fatal("3rd request in window should be rejected")
	}

	// Advance past the window boundary: counter restarts at zero
	now = now.Add(policy.Window + time.Second)
	result := limiter.Check(context.Background(), "10.0.0.1", policy)
	if !result.Allowed {
		t.Fatal("request after reset should be allowed")
	}
	if result.Remaining != policy.MaxRequests-1 {
		t.Fatalf("expected remaining %d after reset, got %d", policy.MaxRequests-1, result.Remaining)
	}
}

func TestIdentitiesDoNotContend(t *testing.T) {
	limiter := New(NewMemoryStore(), zerolog.Nop())
	policy := testPolicy(1)

	limiter.Check(context.Background(), "10.0.0.1", policy)
	if limiter.Check(context.Background(), "10.0.0.1", policy).Allowed {
		t.Fatal("same identity should be limited")
	}
	if !limiter.Check(context.Background(), "10.0.0.2", policy).Allowed {
		t.Fatal("different identity should not be limited")
	}
}

func TestClassesAreIndependent(t *testing.T) {
	limiter := New(NewMemoryStore(), zerolog.Nop())

	strict := Policy{Class: ClassStrict, MaxRequests: 1, Window: time.Minute}
	standard := Policy{Class: ClassStandard, MaxRequests: 1, Window: time.Minute}

	limiter.Check(context.Background(), "10.0.0.1", strict)
	if limiter.Check(context.Background(), "10.0.0.1", strict).Allowed {
		t.Fatal("strict class should be exhausted")
	}
	if !limiter.Check(context.Background(), "10.0.0.1", standard).Allowed {
		t.Fatal("standard class should be unaffected by strict usage")
	}
}

func TestConcurrentIncrementsDoNotUndercount(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Incr(context.Background(), "standard:10.0.0.1", time.Minute)
		}()
	}
	wg.Wait()

	count, _, err := store.Incr(context.Background(), "standard:10.0.0.1", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if count != 101 {
		t.Fatalf("expected count 101, got %d", count)
	}
}

func TestSweepRemovesExpiredWindows(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	store.Incr(context.Background(), "a", time.Minute)
	store.Incr(context.Background(), "b", time.Minute)
	if store.Len() != 2 {
		t.Fatalf("expected 2 windows, got %d", store.Len())
	}

	// Both windows expire; the next Incr past the housekeeping interval sweeps
	now = now.Add(2 * time.Minute)
	store.Incr(context.Background(), "c", time.Minute)
	if store.Len() != 1 {
		t.Fatalf("expected expired windows swept, got %d", store.Len())
	}
}

type failingStore struct{}

func (failingStore) Incr(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("store down")
}

func TestStoreFailureAllowsRequest(t *testing.T) {
	limiter := New(failingStore{}, zerolog.Nop())

	result := limiter.Check(context.Background(), "10.0.0.1", Standard)
	if !result.Allowed {
		t.Fatal("limiter should fail open on store errors")
	}
	if result.ResetAt.IsZero() {
		t.Fatal("fail-open result should still carry header values")
	}
}
