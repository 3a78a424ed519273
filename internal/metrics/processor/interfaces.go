package processor

import (
	"context"
	"time"

	"whatsapp-hub/internal/store"
)

// MetricsStore is the interface for dashboard aggregate queries
type MetricsStore interface {
	GetAttributionOverview(ctx context.Context, since time.Time) (store.AttributionOverview, error)
	GetOriginMix(ctx context.Context, since time.Time) ([]store.OriginMixRow, error)
	GetMatchQuality(ctx context.Context, since time.Time) ([]store.MatchQualityRow, error)
	GetLatencyStats(ctx context.Context, since time.Time) (store.LatencyStats, error)
}
