package guardrails

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/run-bigpig/llm-guardrails/pkg/interfaces"
)

// CounterStore counts requests per key within fixed windows
type CounterStore interface {
	// Increment bumps the counter for the key and returns its new value.
	// The counter expires after the window elapses.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimiter is an input guardrail that blocks requests once a key has
// exhausted its fixed-window budget. The key is taken from the request
// metadata's "user_id" when present, otherwise all callers share one
// bucket.
type RateLimiter struct {
	name    string
	enabled bool
	limit   int64
	window  time.Duration
	store   CounterStore
}

// RateLimitOption represents an option for configuring a rate limiter
type RateLimitOption func(*RateLimiter)

// WithRateLimitWindow sets the fixed window size
func WithRateLimitWindow(window time.Duration) RateLimitOption {
	return func(r *RateLimiter) {
		r.window = window
	}
}

// WithCounterStore sets the backing counter store
func WithCounterStore(store CounterStore) RateLimitOption {
	return func(r *RateLimiter) {
		r.store = store
	}
}

// WithRateLimiterName sets the guardrail's identity
func WithRateLimiterName(name string) RateLimitOption {
	return func(r *RateLimiter) {
		r.name = name
	}
}

// WithRateLimiterEnabled sets whether the guardrail runs
func WithRateLimiterEnabled(enabled bool) RateLimitOption {
	return func(r *RateLimiter) {
		r.enabled = enabled
	}
}

// NewRateLimiter creates a new rate limiter allowing limit requests per
// window. Defaults to an in-memory store and a one-minute window.
func NewRateLimiter(limit int64, options ...RateLimitOption) (*RateLimiter, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("rate limit must be > 0, got %d", limit)
	}

	limiter := &RateLimiter{
		name:    "rate_limiter",
		enabled: true,
		limit:   limit,
		window:  time.Minute,
	}

	for _, option := range options {
		option(limiter)
	}

	if limiter.window <= 0 {
		return nil, fmt.Errorf("rate limit window must be > 0, got %s", limiter.window)
	}
	if limiter.store == nil {
		limiter.store = NewMemoryCounterStore()
	}

	return limiter, nil
}

// Name returns the guardrail's identity
func (r *RateLimiter) Name() string {
	return r.name
}

// Enabled reports whether the guardrail runs
func (r *RateLimiter) Enabled() bool {
	return r.enabled
}

// String implements fmt.Stringer
func (r *RateLimiter) String() string {
	return fmt.Sprintf("RateLimiter(name=%s, enabled=%t, limit=%d/%s)", r.name, r.enabled, r.limit, r.window)
}

// Validate counts the request against its key's window budget
func (r *RateLimiter) Validate(ctx context.Context, input string, metadata map[string]interface{}) (*interfaces.GuardrailResult, error) {
	key := "global"
	if userID, ok := metadata["user_id"].(string); ok && userID != "" {
		key = userID
	}

	count, err := r.store.Increment(ctx, key, r.window)
	if err != nil {
		return nil, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	if count > r.limit {
		return &interfaces.GuardrailResult{
			Status:  interfaces.GuardrailBlocked,
			Message: fmt.Sprintf("Rate limit exceeded: %d requests in %s (limit: %d)", count, r.window, r.limit),
			Metadata: map[string]interface{}{
				"rate_limit_key":   key,
				"rate_limit_count": count,
				"rate_limit":       r.limit,
			},
		}, nil
	}

	return &interfaces.GuardrailResult{
		Status:          interfaces.GuardrailPassed,
		Message:         fmt.Sprintf("Rate limit check passed: %d/%d", count, r.limit),
		ModifiedContent: &input,
		Metadata: map[string]interface{}{
			"rate_limit_key":   key,
			"rate_limit_count": count,
			"rate_limit":       r.limit,
		},
	}, nil
}

// MemoryCounterStore is an in-process CounterStore for single-instance
// deployments and tests
type MemoryCounterStore struct {
	mu      sync.Mutex
	counts  map[string]int64
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryCounterStore creates a new in-memory counter store
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		counts:  make(map[string]int64),
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Increment bumps the key's counter, resetting it when its window has
// elapsed
func (s *MemoryCounterStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiry, ok := s.expires[key]; !ok || now.After(expiry) {
		s.counts[key] = 0
		s.expires[key] = now.Add(window)
	}

	s.counts[key]++
	return s.counts[key], nil
}
