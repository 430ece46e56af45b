package web

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("burst is honoured", func(t *testing.T) {
		r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 2})

		assert.True(t, r.Allow())
		assert.True(t, r.Allow())
		assert.False(t, r.Allow())
	})

	t.Run("zero rate is unlimited", func(t *testing.T) {
		r := NewRateLimiter(RateLimitConfig{})

		for i := 0; i < 100; i++ {
			require.True(t, r.Allow())
		}
	})

	t.Run("backoff blocks requests", func(t *testing.T) {
		r := NewRateLimiter(RateLimitConfig{})
		r.RecordRateLimitError(time.Minute)

		assert.False(t, r.Allow())
	})

	t.Run("non-positive backoff uses the default", func(t *testing.T) {
		r := NewRateLimiter(RateLimitConfig{})
		r.RecordRateLimitError(0)

		r.mu.Lock()
		retryAt := r.retryAt
		r.mu.Unlock()
		assert.WithinDuration(t, time.Now().Add(defaultBackoff), retryAt, time.Second)
	})
}

func TestRateLimiter_Wait(t *testing.T) {
	t.Run("returns immediately within burst", func(t *testing.T) {
		r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})

		start := time.Now()
		require.NoError(t, r.Wait(context.Background()))
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("waits out a backoff", func(t *testing.T) {
		r := NewRateLimiter(RateLimitConfig{})
		r.RecordRateLimitError(100 * time.Millisecond)

		start := time.Now()
		require.NoError(t, r.Wait(context.Background()))
		assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	})

	t.Run("context cancellation interrupts a backoff", func(t *testing.T) {
		r := NewRateLimiter(RateLimitConfig{})
		r.RecordRateLimitError(time.Minute)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := r.Wait(ctx)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
