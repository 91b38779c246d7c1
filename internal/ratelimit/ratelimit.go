// Package ratelimit provides the shared pacing for outbound metadata calls.
//
// MusicBrainz allows roughly one request per second per client. Every
// outbound call in the process, API lookups and page scrapes alike, shares a
// single Limiter so the gap between any two calls never drops below the
// configured interval.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter gates outbound calls. Wait blocks until the caller may proceed or
// the context is canceled.
type Limiter interface {
	Wait(ctx context.Context) error
}

// IntervalLimiter enforces a minimum interval between calls across all
// goroutines. Burst is fixed at 1, so calls serialize.
type IntervalLimiter struct {
	limiter *rate.Limiter
}

// NewInterval creates a limiter that allows one call per interval.
func NewInterval(interval time.Duration) *IntervalLimiter {
	return &IntervalLimiter{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until the next call slot or context cancellation.
func (l *IntervalLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Noop is a Limiter that never blocks. Useful in tests.
type Noop struct{}

// Wait returns immediately unless the context is already canceled.
func (Noop) Wait(ctx context.Context) error {
	return ctx.Err()
}
