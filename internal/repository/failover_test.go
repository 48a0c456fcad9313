package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *mockLimiter) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestFailoverRateLimiter(t *testing.T) {
	primary := new(mockLimiter)
	fallback := new(mockLimiter)
	logger := zerolog.New(io.Discard)
	limiter := NewFailoverRateLimiter(primary, fallback, &logger)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("Allow", ctx, "user:1", 5, time.Minute).Return(true, nil).Once()

		allowed, err := limiter.Allow(ctx, "user:1", 5, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.False(t, limiter.Degraded())
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		primary.On("Allow", ctx, "user:2", 5, time.Minute).Return(false, errors.New("connection refused")).Once()
		fallback.On("Allow", ctx, "user:2", 5, time.Minute).Return(true, nil).Once()

		allowed, err := limiter.Allow(ctx, "user:2", 5, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.True(t, limiter.Degraded())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("StaysOnFallbackBeforeRecoveryInterval", func(t *testing.T) {
		now = now.Add(30 * time.Second)
		fallback.On("Allow", ctx, "user:3", 5, time.Minute).Return(false, nil).Once()

		allowed, err := limiter.Allow(ctx, "user:3", 5, time.Minute)
		assert.NoError(t, err)
		assert.False(t, allowed)
		primary.AssertNotCalled(t, "Allow", ctx, "user:3", 5, time.Minute)
	})

	t.Run("RecoveryFailsThenSucceeds", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		primary.On("Allow", ctx, "user:4", 5, time.Minute).Return(false, errors.New("still down")).Once()
		fallback.On("Allow", ctx, "user:4", 5, time.Minute).Return(true, nil).Once()

		_, err := limiter.Allow(ctx, "user:4", 5, time.Minute)
		assert.NoError(t, err)
		assert.True(t, limiter.Degraded())

		now = now.Add(2 * time.Minute)
		primary.On("Allow", ctx, "user:5", 5, time.Minute).Return(true, nil).Once()

		allowed, err := limiter.Allow(ctx, "user:5", 5, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.False(t, limiter.Degraded())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("PingDelegatesToPrimary", func(t *testing.T) {
		primary.On("Ping", ctx).Return(errors.New("down")).Once()
		assert.Error(t, limiter.Ping(ctx))
	})
}
