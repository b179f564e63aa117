package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoRetriesUntilSuccess(t *testing.T) {
	policy := NewPolicy(WithInitialInterval(time.Millisecond), WithMaxAttempts(5))

	attempts := 0
	err := policy.Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	policy := NewPolicy(WithInitialInterval(time.Millisecond), WithMaxAttempts(5))

	cause := errors.New("blocked for good")
	attempts := 0
	err := policy.Do(context.Background(), func() error {
		attempts++
		return Permanent(cause)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, attempts)
}

func TestDoExhaustsAttempts(t *testing.T) {
	policy := NewPolicy(WithInitialInterval(time.Millisecond), WithMaxAttempts(2))

	attempts := 0
	err := policy.Do(context.Background(), func() error {
		attempts++
		return errors.New("still failing")
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts, "max attempts counts retries after the first call")
}
