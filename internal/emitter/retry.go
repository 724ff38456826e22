package emitter

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"

	"github.com/yairfalse/ocitally/internal/config"
	"github.com/yairfalse/ocitally/pkg/report"
)

// RetryPolicy bounds how an upload is retried.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// PolicyFromConfig converts the output retry section.
func PolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     cfg.MaxAttempts,
		InitialInterval: cfg.InitialInterval,
		MaxInterval:     cfg.MaxInterval,
	}
}

// RetryingEmitter retries transient upload failures with exponential backoff.
// Errors wrapped with backoff.Permanent are returned at once.
type RetryingEmitter struct {
	next   Emitter
	policy RetryPolicy
}

// WithRetry wraps next with policy. MaxAttempts below one means one attempt.
func WithRetry(next Emitter, policy RetryPolicy) *RetryingEmitter {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &RetryingEmitter{next: next, policy: policy}
}

// Sink returns the wrapped sink.
func (r *RetryingEmitter) Sink() string { return r.next.Sink() }

// Emit uploads c, retrying up to MaxAttempts times.
func (r *RetryingEmitter) Emit(ctx context.Context, run report.Run, c *report.Collection) error {
	b := backoff.NewExponentialBackOff()
	if r.policy.InitialInterval > 0 {
		b.InitialInterval = r.policy.InitialInterval
	}
	if r.policy.MaxInterval > 0 {
		b.MaxInterval = r.policy.MaxInterval
	}

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		return struct{}{}, r.next.Emit(ctx, run, c)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(r.policy.MaxAttempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Warn().Ctx(ctx).Err(err).
				Str("family", c.Family.Name).
				Int("attempt", attempt).
				Dur("retry_in", wait).
				Msg("upload failed, retrying")
		}),
	)
	return err
}

// Close closes the wrapped emitter.
func (r *RetryingEmitter) Close() error { return r.next.Close() }
