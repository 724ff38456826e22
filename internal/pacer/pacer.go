// Package pacer spaces provider API calls with a token bucket.
package pacer

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Pacer gates provider calls. A nil *Pacer never blocks.
type Pacer struct {
	limiter *rate.Limiter
}

// New returns a pacer allowing callsPerSecond sustained calls with the given
// burst. A non-positive rate disables pacing.
func New(callsPerSecond float64, burst int) *Pacer {
	limit := rate.Limit(callsPerSecond)
	if callsPerSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Pacer{limiter: rate.NewLimiter(limit, burst)}
}

// Unlimited returns a pacer that never waits.
func Unlimited() *Pacer {
	return New(0, 1)
}

// Wait blocks until the next call is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pacer: %w", err)
	}
	return nil
}

// Limit returns the configured calls per second.
func (p *Pacer) Limit() float64 {
	if p == nil {
		return float64(rate.Inf)
	}
	return float64(p.limiter.Limit())
}
