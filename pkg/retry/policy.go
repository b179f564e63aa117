// Package retry is a caller-side helper for retrying chat calls. The
// guardrails engine never retries on its own; blocked and failed calls
// surface to the caller, who decides.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy defines the retry policy configuration
type Policy struct {
	InitialInterval    time.Duration
	BackoffCoefficient float64
	MaximumInterval    time.Duration
	MaximumAttempts    int32
}

// Option represents a retry policy option
type Option func(*Policy)

// WithInitialInterval sets the initial interval for retries
func WithInitialInterval(interval time.Duration) Option {
	return func(p *Policy) {
		p.InitialInterval = interval
	}
}

// WithBackoffCoefficient sets the backoff coefficient
func WithBackoffCoefficient(coefficient float64) Option {
	return func(p *Policy) {
		p.BackoffCoefficient = coefficient
	}
}

// WithMaximumInterval sets the maximum interval between retries
func WithMaximumInterval(interval time.Duration) Option {
	return func(p *Policy) {
		p.MaximumInterval = interval
	}
}

// WithMaxAttempts sets the maximum number of retry attempts
func WithMaxAttempts(attempts int32) Option {
	return func(p *Policy) {
		p.MaximumAttempts = attempts
	}
}

// NewPolicy creates a new retry policy with default values
func NewPolicy(opts ...Option) *Policy {
	policy := &Policy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    time.Second * 100,
		MaximumAttempts:    3,
	}

	for _, opt := range opts {
		opt(policy)
	}

	return policy
}

// Permanent marks an error as not retryable, e.g. a guardrail block
// that repeating the same request cannot fix
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs fn under the policy's exponential backoff until it succeeds,
// returns a permanent error, exhausts the attempt budget, or the
// context is cancelled
func (p *Policy) Do(ctx context.Context, fn func() error) error {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = p.InitialInterval
	expBackoff.Multiplier = p.BackoffCoefficient
	expBackoff.MaxInterval = p.MaximumInterval

	policy := backoff.WithContext(
		backoff.WithMaxRetries(expBackoff, uint64(p.MaximumAttempts)),
		ctx,
	)

	return backoff.Retry(fn, policy)
}
