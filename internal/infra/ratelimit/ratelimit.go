package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter paces outbound channel calls with a token bucket.
// A nil *RateLimiter never waits.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter returns a limiter allowing requestsPerSecond sustained with
// bursts of up to burst calls. A non-positive rate returns nil.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Allow blocks until a token is available or ctx is done. It fails at once
// when the wait would outlast the ctx deadline.
func (r *RateLimiter) Allow(ctx context.Context) error {
	if r == nil {
		return ctx.Err()
	}
	return r.limiter.Wait(ctx)
}
