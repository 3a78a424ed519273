package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"whatsapp-hub/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCounterStore is a mock implementation of CounterStore
type MockCounterStore struct {
	mock.Mock
}

func (m *MockCounterStore) IncrementRateLimitCounter(ctx context.Context, key string, windowStart time.Time) (int, error) {
	args := m.Called(ctx, key, windowStart)
	return args.Int(0), args.Error(1)
}

func TestCheck_PostgresFallbackAllows(t *testing.T) {
	mockStore := new(MockCounterStore)
	logger := observability.NewLogger()
	service := NewService(nil, mockStore, 60, logger)

	mockStore.On("IncrementRateLimitCounter", mock.Anything, "click:203.0.113.7", mock.MatchedBy(func(windowStart time.Time) bool {
		return windowStart.Equal(windowStart.Truncate(time.Minute))
	})).Return(1, nil)

	result, err := service.Check(context.Background(), "203.0.113.7")

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 60, result.Limit)
	assert.Equal(t, 59, result.Remaining)
	assert.Zero(t, result.RetryAfterMs)
}

func TestCheck_OverBudget(t *testing.T) {
	mockStore := new(MockCounterStore)
	logger := observability.NewLogger()
	service := NewService(nil, mockStore, 60, logger)

	mockStore.On("IncrementRateLimitCounter", mock.Anything, "click:203.0.113.7", mock.Anything).
		Return(61, nil)

	result, err := service.Check(context.Background(), "203.0.113.7")

	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Zero(t, result.Remaining)
	assert.Positive(t, result.RetryAfterMs)
}

func TestCheck_AtBudgetStillAllowed(t *testing.T) {
	mockStore := new(MockCounterStore)
	logger := observability.NewLogger()
	service := NewService(nil, mockStore, 60, logger)

	mockStore.On("IncrementRateLimitCounter", mock.Anything, mock.Anything, mock.Anything).
		Return(60, nil)

	result, err := service.Check(context.Background(), "203.0.113.7")

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Zero(t, result.Remaining)
}

func TestCheck_CounterErrorPropagates(t *testing.T) {
	mockStore := new(MockCounterStore)
	logger := observability.NewLogger()
	service := NewService(nil, mockStore, 60, logger)

	dbErr := errors.New("connection reset")
	mockStore.On("IncrementRateLimitCounter", mock.Anything, mock.Anything, mock.Anything).
		Return(0, dbErr)

	_, err := service.Check(context.Background(), "203.0.113.7")

	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
}
