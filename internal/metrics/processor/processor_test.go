package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"whatsapp-hub/internal/observability"
	"whatsapp-hub/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMetricsStore is a mock implementation of MetricsStore
type MockMetricsStore struct {
	mock.Mock
}

func (m *MockMetricsStore) GetAttributionOverview(ctx context.Context, since time.Time) (store.AttributionOverview, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(store.AttributionOverview), args.Error(1)
}

func (m *MockMetricsStore) GetOriginMix(ctx context.Context, since time.Time) ([]store.OriginMixRow, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.OriginMixRow), args.Error(1)
}

func (m *MockMetricsStore) GetMatchQuality(ctx context.Context, since time.Time) ([]store.MatchQualityRow, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.MatchQualityRow), args.Error(1)
}

func (m *MockMetricsStore) GetLatencyStats(ctx context.Context, since time.Time) (store.LatencyStats, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(store.LatencyStats), args.Error(1)
}

// sinceWithin matches a cutoff roughly `days` before now
func sinceWithin(days int) interface{} {
	return mock.MatchedBy(func(since time.Time) bool {
		expected := time.Now().UTC().AddDate(0, 0, -days)
		diff := since.Sub(expected)
		if diff < 0 {
			diff = -diff
		}
		return diff < time.Minute
	})
}

func TestGetOverview_ComputesMatchRate(t *testing.T) {
	mockStore := new(MockMetricsStore)
	logger := observability.NewLogger()
	processor := New(mockStore, logger)

	mockStore.On("GetAttributionOverview", mock.Anything, sinceWithin(7)).
		Return(store.AttributionOverview{TotalClicks: 120, TotalConversations: 40, MatchedConversations: 30}, nil)

	overview, err := processor.GetOverview(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 120, overview.TotalClicks)
	assert.Equal(t, 40, overview.TotalConversations)
	assert.Equal(t, 30, overview.MatchedConversations)
	assert.InDelta(t, 0.75, overview.MatchRate, 1e-9)
}

func TestGetOverview_NoConversations(t *testing.T) {
	mockStore := new(MockMetricsStore)
	logger := observability.NewLogger()
	processor := New(mockStore, logger)

	mockStore.On("GetAttributionOverview", mock.Anything, mock.Anything).
		Return(store.AttributionOverview{TotalClicks: 5}, nil)

	overview, err := processor.GetOverview(context.Background(), 7)

	require.NoError(t, err)
	assert.Zero(t, overview.MatchRate)
}

func TestGetOverview_DefaultWindow(t *testing.T) {
	mockStore := new(MockMetricsStore)
	logger := observability.NewLogger()
	processor := New(mockStore, logger)

	mockStore.On("GetAttributionOverview", mock.Anything, sinceWithin(DefaultWindowDays)).
		Return(store.AttributionOverview{}, nil)

	_, err := processor.GetOverview(context.Background(), 0)

	require.NoError(t, err)
	mockStore.AssertExpectations(t)
}

func TestGetOverview_WindowCapped(t *testing.T) {
	mockStore := new(MockMetricsStore)
	logger := observability.NewLogger()
	processor := New(mockStore, logger)

	mockStore.On("GetAttributionOverview", mock.Anything, sinceWithin(MaxWindowDays)).
		Return(store.AttributionOverview{}, nil)

	_, err := processor.GetOverview(context.Background(), 10000)

	require.NoError(t, err)
	mockStore.AssertExpectations(t)
}

func TestGetOriginMix_ComputesShares(t *testing.T) {
	mockStore := new(MockMetricsStore)
	logger := observability.NewLogger()
	processor := New(mockStore, logger)

	mockStore.On("GetOriginMix", mock.Anything, mock.Anything).
		Return([]store.OriginMixRow{
			{OriginLabel: store.OriginLabelMetaAds, Count: 60},
			{OriginLabel: store.OriginLabelUntracked, Count: 40},
		}, nil)

	slices, err := processor.GetOriginMix(context.Background(), 30)

	require.NoError(t, err)
	require.Len(t, slices, 2)
	assert.Equal(t, store.OriginLabelMetaAds, slices[0].OriginLabel)
	assert.InDelta(t, 0.6, slices[0].Share, 1e-9)
	assert.InDelta(t, 0.4, slices[1].Share, 1e-9)
}

func TestGetOriginMix_Empty(t *testing.T) {
	mockStore := new(MockMetricsStore)
	logger := observability.NewLogger()
	processor := New(mockStore, logger)

	mockStore.On("GetOriginMix", mock.Anything, mock.Anything).
		Return([]store.OriginMixRow{}, nil)

	slices, err := processor.GetOriginMix(context.Background(), 30)

	require.NoError(t, err)
	assert.Empty(t, slices)
}

func TestGetMatchQuality(t *testing.T) {
	mockStore := new(MockMetricsStore)
	logger := observability.NewLogger()
	processor := New(mockStore, logger)

	mockStore.On("GetMatchQuality", mock.Anything, mock.Anything).
		Return([]store.MatchQualityRow{
			{MatchMethod: store.MatchMethodZeroWidthExact, Count: 25, AvgConfidence: 1.0},
			{MatchMethod: store.MatchMethodTemporalWindow, Count: 10, AvgConfidence: 0.72},
		}, nil)

	slices, err := processor.GetMatchQuality(context.Background(), 30)

	require.NoError(t, err)
	require.Len(t, slices, 2)
	assert.Equal(t, store.MatchMethodZeroWidthExact, slices[0].MatchMethod)
	assert.InDelta(t, 0.72, slices[1].AvgConfidence, 1e-9)
}

func TestGetLatency_EmptyWindow(t *testing.T) {
	mockStore := new(MockMetricsStore)
	logger := observability.NewLogger()
	processor := New(mockStore, logger)

	mockStore.On("GetLatencyStats", mock.Anything, mock.Anything).
		Return(store.LatencyStats{}, nil)

	latency, err := processor.GetLatency(context.Background(), 30)

	require.NoError(t, err)
	assert.Nil(t, latency.AvgSeconds)
	assert.Nil(t, latency.P50Seconds)
	assert.Nil(t, latency.P95Seconds)
}

func TestGetLatency_StoreError(t *testing.T) {
	mockStore := new(MockMetricsStore)
	logger := observability.NewLogger()
	processor := New(mockStore, logger)

	dbErr := errors.New("connection reset")
	mockStore.On("GetLatencyStats", mock.Anything, mock.Anything).
		Return(store.LatencyStats{}, dbErr)

	_, err := processor.GetLatency(context.Background(), 30)

	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
}
