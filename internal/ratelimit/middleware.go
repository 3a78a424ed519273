package ratelimit

import (
	"fmt"
	"net/http"

	"whatsapp-hub/internal/observability"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware that rate-limits requests per client IP
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		clientIP := observability.GetClientIP(c)

		result, err := s.Check(ctx, clientIP)
		if err != nil {
			// Both counters are down. Redirects are the product's front
			// door, so let the request through rather than turning a
			// counter outage into an outage of our own.
			s.logger.Error(ctx, "rate limit check failed, allowing request", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetAt.Unix()))

		if !result.Allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", result.RetryAfterMs/1000))
			ctx = observability.WithFields(ctx,
				observability.Field{Key: "client_ip", Value: clientIP},
				observability.Field{Key: "limit", Value: result.Limit},
			)
			s.logger.Warn(ctx, "rate limit exceeded")
			c.String(http.StatusTooManyRequests, "Too many requests")
			c.Abort()
			return
		}

		c.Next()
	}
}
