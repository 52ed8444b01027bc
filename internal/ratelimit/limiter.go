package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Class names a rate-limit policy. Callers pick a class by purpose rather
// than supplying raw thresholds.
type Class string

const (
	// ClassStrict gates authentication-adjacent endpoints.
	ClassStrict Class = "strict"
	// ClassStandard gates general API traffic.
	ClassStandard Class = "standard"
)

// Policy pairs a limiter class with its window thresholds.
type Policy struct {
	Class       Class
	MaxRequests int
	Window      time.Duration
}

var (
	Strict   = Policy{Class: ClassStrict, MaxRequests: 10, Window: time.Minute}
	Standard = Policy{Class: ClassStandard, MaxRequests: 60, Window: time.Minute}
)

// Result is the outcome of a limiter check. It always carries enough
// information for the caller to set rate-limit response headers, even
// when the request is rejected.
type Result struct {
	Allowed           bool
	Limit             int
	Remaining         int
	ResetAt           time.Time
	RetryAfterSeconds int
}

// WindowStore counts requests in fixed windows. Incr creates the window on
// first use, resets it once resetAt has passed, and returns the count
// including the current request.
type WindowStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

// Limiter is a fixed-window rate limiter over an injectable store.
type Limiter struct {
	store  WindowStore
	logger zerolog.Logger
	now    func() time.Time
}

// New creates a limiter backed by the given window store.
func New(store WindowStore, logger zerolog.Logger) *Limiter {
	return &Limiter{store: store, logger: logger, now: time.Now}
}

// Check counts the current request against the policy window for the given
// client identity. It never returns an error: if the backing store fails,
// the request is allowed and the failure is logged.
func (l *Limiter) Check(ctx context.Context, identity string, p Policy) Result {
	key := string(p.Class) + ":" + identity

	count, resetAt, err := l.store.Incr(ctx, key, p.Window)
	if err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("rate limit store failure, allowing request")
		return Result{
			Allowed:   true,
			Limit:     p.MaxRequests,
			Remaining: p.MaxRequests,
			ResetAt:   l.now().Add(p.Window),
		}
	}

	remaining := p.MaxRequests - count
	if remaining < 0 {
		remaining = 0
	}

	retryAfter := int((resetAt.Sub(l.now()) + time.Second - 1) / time.Second)
	if retryAfter < 0 {
		retryAfter = 0
	}

	return Result{
		// The request that pushes the count past the limit is itself rejected.
		Allowed:           count <= p.MaxRequests,
		Limit:             p.MaxRequests,
		Remaining:         remaining,
		ResetAt:           resetAt,
		RetryAfterSeconds: retryAfter,
	}
}
