package store

import (
	"context"
	"fmt"
	"time"
)

// AttributionOverview aggregates top-line funnel numbers for the dashboard
type AttributionOverview struct {
	TotalClicks          int `db:"total_clicks"`
	TotalConversations   int `db:"total_conversations"`
	MatchedConversations int `db:"matched_conversations"`
}

const sqlGetAttributionOverview = `
SELECT (SELECT COUNT(*) FROM click_logs WHERE created_at >= $1) AS total_clicks,
       (SELECT COUNT(*) FROM conversations WHERE received_at >= $1) AS total_conversations,
       (SELECT COUNT(*) FROM conversations WHERE received_at >= $1 AND match_method <> 'ORGANIC') AS matched_conversations`

// GetAttributionOverview returns click and conversation counts since the cutoff
func (s *Store) GetAttributionOverview(ctx context.Context, since time.Time) (AttributionOverview, error) {
	var overview AttributionOverview
	err := s.db.GetContext(ctx, &overview, sqlGetAttributionOverview, since)
	if err != nil {
		s.logger.Error(ctx, "failed to get attribution overview", err)
		return AttributionOverview{}, fmt.Errorf("failed to get attribution overview: %w", err)
	}
	return overview, nil
}

// OriginMixRow is one slice of the conversation origin breakdown
type OriginMixRow struct {
	OriginLabel OriginLabel `db:"origin_label"`
	Count       int         `db:"count"`
}

const sqlGetOriginMix = `
SELECT origin_label, COUNT(*) AS count
FROM conversations
WHERE received_at >= $1
GROUP BY origin_label
ORDER BY count DESC`

// GetOriginMix returns conversation counts grouped by origin label
func (s *Store) GetOriginMix(ctx context.Context, since time.Time) ([]OriginMixRow, error) {
	var rows []OriginMixRow
	err := s.db.SelectContext(ctx, &rows, sqlGetOriginMix, since)
	if err != nil {
		s.logger.Error(ctx, "failed to get origin mix", err)
		return nil, fmt.Errorf("failed to get origin mix: %w", err)
	}
	return rows, nil
}

// MatchQualityRow is one slice of the match-method breakdown
type MatchQualityRow struct {
	MatchMethod   MatchMethod `db:"match_method"`
	Count         int         `db:"count"`
	AvgConfidence float64     `db:"avg_confidence"`
}

const sqlGetMatchQuality = `
SELECT match_method, COUNT(*) AS count, COALESCE(AVG(match_confidence), 0) AS avg_confidence
FROM conversations
WHERE received_at >= $1
GROUP BY match_method
ORDER BY count DESC`

// GetMatchQuality returns conversation counts and average confidence per match method
func (s *Store) GetMatchQuality(ctx context.Context, since time.Time) ([]MatchQualityRow, error) {
	var rows []MatchQualityRow
	err := s.db.SelectContext(ctx, &rows, sqlGetMatchQuality, since)
	if err != nil {
		s.logger.Error(ctx, "failed to get match quality", err)
		return nil, fmt.Errorf("failed to get match quality: %w", err)
	}
	return rows, nil
}

// LatencyStats summarizes click-to-message latency for matched conversations
type LatencyStats struct {
	AvgSeconds *float64 `db:"avg_seconds"`
	P50Seconds *float64 `db:"p50_seconds"`
	P95Seconds *float64 `db:"p95_seconds"`
}

const sqlGetLatencyStats = `
SELECT AVG(click_to_message_latency_seconds) AS avg_seconds,
       PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY click_to_message_latency_seconds) AS p50_seconds,
       PERCENTILE_CONT(0.95) WITHIN GROUP (ORDER BY click_to_message_latency_seconds) AS p95_seconds
FROM conversations
WHERE received_at >= $1 AND click_to_message_latency_seconds IS NOT NULL`

// GetLatencyStats returns latency aggregates over matched conversations.
// Fields are nil when no matched conversation exists in the window.
func (s *Store) GetLatencyStats(ctx context.Context, since time.Time) (LatencyStats, error) {
	var stats LatencyStats
	err := s.db.GetContext(ctx, &stats, sqlGetLatencyStats, since)
	if err != nil {
		s.logger.Error(ctx, "failed to get latency stats", err)
		return LatencyStats{}, fmt.Errorf("failed to get latency stats: %w", err)
	}
	return stats, nil
}

const sqlIncrementRateLimitCounter = `
INSERT INTO rate_limit_counters (key, window_start, count)
VALUES ($1, $2, 1)
ON CONFLICT (key, window_start) DO UPDATE SET count = rate_limit_counters.count + 1
RETURNING count`

// IncrementRateLimitCounter bumps the fixed-window counter for a key and
// returns the new count. Used as the Postgres fallback when Redis is down.
func (s *Store) IncrementRateLimitCounter(ctx context.Context, key string, windowStart time.Time) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, sqlIncrementRateLimitCounter, key, windowStart)
	if err != nil {
		s.logger.Error(ctx, "failed to increment rate limit counter", err)
		return 0, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	return count, nil
}
