package ratelimit

import (
	"context"
	"fmt"
	"time"

	"whatsapp-hub/internal/clients/redis"
	"whatsapp-hub/internal/observability"
)

// CounterStore is the Postgres fallback for rate limit counters
type CounterStore interface {
	IncrementRateLimitCounter(ctx context.Context, key string, windowStart time.Time) (int, error)
}

// Result represents the outcome of a rate limit check
type Result struct {
	Allowed      bool      `json:"allowed"`
	Limit        int       `json:"limit"`
	Remaining    int       `json:"remaining"`
	ResetAt      time.Time `json:"reset_at"`
	RetryAfterMs int       `json:"retry_after_ms,omitempty"`
}

// Service rate-limits the public redirect endpoint per client IP using a
// fixed one-minute window. Redis is the primary counter; when it is
// unavailable the check falls back to a Postgres counter so the endpoint
// never fails open without a budget.
type Service struct {
	redis  *redis.Client
	store  CounterStore
	limit  int
	logger *observability.Logger
}

func NewService(redisClient *redis.Client, counterStore CounterStore, limit int, logger *observability.Logger) *Service {
	return &Service{
		redis:  redisClient,
		store:  counterStore,
		limit:  limit,
		logger: logger,
	}
}

// Check consumes one request from the budget for the given client IP
func (s *Service) Check(ctx context.Context, clientIP string) (Result, error) {
	windowStart := time.Now().UTC().Truncate(time.Minute)

	if s.redis != nil && s.redis.IsEnabled() {
		result, err := s.checkRedis(ctx, clientIP, windowStart)
		if err != nil {
			s.logger.Warn(ctx, "Redis rate limit check failed, falling back to Postgres", err)
			return s.checkPostgres(ctx, clientIP, windowStart)
		}
		return result, nil
	}

	return s.checkPostgres(ctx, clientIP, windowStart)
}

func (s *Service) checkRedis(ctx context.Context, clientIP string, windowStart time.Time) (Result, error) {
	key := fmt.Sprintf("rl:click:%s:%d", clientIP, windowStart.Unix())

	count, err := s.redis.Incr(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("failed to increment rate limit key: %w", err)
	}

	// First hit in the window owns the expiry. Two minutes so clock skew
	// between instances cannot orphan a live window.
	if count == 1 {
		if err := s.redis.Expire(ctx, key, 2*time.Minute); err != nil {
			s.logger.Warn(ctx, "failed to set expiration on rate limit key", err)
		}
	}

	return s.buildResult(int(count), windowStart), nil
}

func (s *Service) checkPostgres(ctx context.Context, clientIP string, windowStart time.Time) (Result, error) {
	count, err := s.store.IncrementRateLimitCounter(ctx, fmt.Sprintf("click:%s", clientIP), windowStart)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check rate limit: %w", err)
	}
	return s.buildResult(count, windowStart), nil
}

func (s *Service) buildResult(count int, windowStart time.Time) Result {
	resetAt := windowStart.Add(time.Minute)
	result := Result{
		Allowed: count <= s.limit,
		Limit:   s.limit,
		ResetAt: resetAt,
	}
	if remaining := s.limit - count; remaining > 0 {
		result.Remaining = remaining
	}
	if !result.Allowed {
		retryAfter := time.Until(resetAt)
		if retryAfter < 0 {
			retryAfter = 0
		}
		result.RetryAfterMs = int(retryAfter.Milliseconds())
	}
	return result
}
