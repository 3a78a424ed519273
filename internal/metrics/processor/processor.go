package processor

import (
	"context"
	"fmt"
	"time"

	"whatsapp-hub/internal/observability"
	"whatsapp-hub/internal/store"
)

const (
	// DefaultWindowDays is the lookback window when the caller does not pass one.
	DefaultWindowDays = 30
	// MaxWindowDays caps the lookback window to keep the aggregate queries cheap.
	MaxWindowDays = 365
)

// Overview is the top-line dashboard summary
type Overview struct {
	TotalClicks          int     `json:"total_clicks"`
	TotalConversations   int     `json:"total_conversations"`
	MatchedConversations int     `json:"matched_conversations"`
	MatchRate            float64 `json:"match_rate"`
}

// OriginSlice is one entry of the origin breakdown
type OriginSlice struct {
	OriginLabel store.OriginLabel `json:"origin_label"`
	Count       int               `json:"count"`
	Share       float64           `json:"share"`
}

// MatchQualitySlice is one entry of the match-method breakdown
type MatchQualitySlice struct {
	MatchMethod   store.MatchMethod `json:"match_method"`
	Count         int               `json:"count"`
	AvgConfidence float64           `json:"avg_confidence"`
}

// Latency summarizes click-to-message delay for matched conversations.
// Pointer fields are nil when no matched conversation exists in the window.
type Latency struct {
	AvgSeconds *float64 `json:"avg_seconds"`
	P50Seconds *float64 `json:"p50_seconds"`
	P95Seconds *float64 `json:"p95_seconds"`
}

type MetricsProcessor struct {
	store  MetricsStore
	logger *observability.Logger
}

func New(metricsStore MetricsStore, logger *observability.Logger) MetricsProcessor {
	return MetricsProcessor{
		store:  metricsStore,
		logger: logger,
	}
}

// windowStart clamps the requested lookback and converts it to a cutoff time
func windowStart(days int) time.Time {
	if days <= 0 {
		days = DefaultWindowDays
	}
	if days > MaxWindowDays {
		days = MaxWindowDays
	}
	return time.Now().UTC().AddDate(0, 0, -days)
}

func (p *MetricsProcessor) GetOverview(ctx context.Context, days int) (Overview, error) {
	raw, err := p.store.GetAttributionOverview(ctx, windowStart(days))
	if err != nil {
		return Overview{}, fmt.Errorf("failed to get overview: %w", err)
	}

	overview := Overview{
		TotalClicks:          raw.TotalClicks,
		TotalConversations:   raw.TotalConversations,
		MatchedConversations: raw.MatchedConversations,
	}
	if raw.TotalConversations > 0 {
		overview.MatchRate = float64(raw.MatchedConversations) / float64(raw.TotalConversations)
	}
	return overview, nil
}

func (p *MetricsProcessor) GetOriginMix(ctx context.Context, days int) ([]OriginSlice, error) {
	rows, err := p.store.GetOriginMix(ctx, windowStart(days))
	if err != nil {
		return nil, fmt.Errorf("failed to get origin mix: %w", err)
	}

	total := 0
	for _, row := range rows {
		total += row.Count
	}

	slices := make([]OriginSlice, 0, len(rows))
	for _, row := range rows {
		slice := OriginSlice{
			OriginLabel: row.OriginLabel,
			Count:       row.Count,
		}
		if total > 0 {
			slice.Share = float64(row.Count) / float64(total)
		}
		slices = append(slices, slice)
	}
	return slices, nil
}

func (p *MetricsProcessor) GetMatchQuality(ctx context.Context, days int) ([]MatchQualitySlice, error) {
	rows, err := p.store.GetMatchQuality(ctx, windowStart(days))
	if err != nil {
		return nil, fmt.Errorf("failed to get match quality: %w", err)
	}

	slices := make([]MatchQualitySlice, 0, len(rows))
	for _, row := range rows {
		slices = append(slices, MatchQualitySlice{
			MatchMethod:   row.MatchMethod,
			Count:         row.Count,
			AvgConfidence: row.AvgConfidence,
		})
	}
	return slices, nil
}

func (p *MetricsProcessor) GetLatency(ctx context.Context, days int) (Latency, error) {
	stats, err := p.store.GetLatencyStats(ctx, windowStart(days))
	if err != nil {
		return Latency{}, fmt.Errorf("failed to get latency stats: %w", err)
	}
	return Latency{
		AvgSeconds: stats.AvgSeconds,
		P50Seconds: stats.P50Seconds,
		P95Seconds: stats.P95Seconds,
	}, nil
}
