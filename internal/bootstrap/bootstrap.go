package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"whatsapp-hub/internal/config"
	"whatsapp-hub/internal/observability"
	"whatsapp-hub/internal/store"

	authHandler "whatsapp-hub/internal/auth/handler"
	authProcessor "whatsapp-hub/internal/auth/processor"
	kafkaClient "whatsapp-hub/internal/clients/kafka"
	redisClient "whatsapp-hub/internal/clients/redis"
	"whatsapp-hub/internal/events"
	linksHandler "whatsapp-hub/internal/links/handler"
	linksProcessor "whatsapp-hub/internal/links/processor"
	metricsHandler "whatsapp-hub/internal/metrics/handler"
	metricsProcessor "whatsapp-hub/internal/metrics/processor"
	"whatsapp-hub/internal/ratelimit"
	sessionHandler "whatsapp-hub/internal/session/handler"
	sessionProcessor "whatsapp-hub/internal/session/processor"
	trackingHandler "whatsapp-hub/internal/tracking/handler"
	trackingProcessor "whatsapp-hub/internal/tracking/processor"
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	// Core
	Store  store.Store
	Logger *observability.Logger

	// Handlers
	AuthHandler     authHandler.Handler
	TrackingHandler trackingHandler.Handler
	LinksHandler    linksHandler.Handler
	MetricsHandler  metricsHandler.Handler
	SessionHandler  sessionHandler.Handler

	// Shared services
	RateLimiter     *ratelimit.Service
	EventPublisher  *events.Publisher
	SessionRegistry *sessionProcessor.Registry

	// Clients (for cleanup)
	KafkaProducer *kafkaClient.Producer
	RedisClient   *redisClient.Client
}

// Initialize sets up all application dependencies
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Logger: logger,
	}

	// Initialize database store
	connectionString := cfg.Database.ConnectionString()
	var err error
	deps.Store, err = store.New(connectionString, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize Redis (nil when disabled; rate limiting falls back to Postgres)
	deps.RedisClient, err = redisClient.NewClient(cfg.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}

	// Initialize Kafka producer for domain events
	deps.KafkaProducer = kafkaClient.NewProducer(kafkaClient.ProducerConfig{
		Brokers: strings.Split(cfg.Kafka.Brokers, ","),
	}, logger)
	deps.EventPublisher = events.NewPublisher(deps.KafkaProducer, cfg.Kafka.MessagesTopic, cfg.Kafka.EventsTopic, logger)

	// Rate limiting for the public redirect endpoint
	deps.RateLimiter = ratelimit.NewService(deps.RedisClient, &deps.Store, cfg.RateLimit.RedirectRPM, logger)

	// Auth
	authProc := authProcessor.New(&deps.Store, cfg.Auth.JWTSecret, logger)
	deps.AuthHandler = authHandler.New(authProc, logger)

	// Tracking redirect
	trackingProc := trackingProcessor.New(&deps.Store, logger)
	deps.TrackingHandler = trackingHandler.New(trackingProc, logger)

	// Link management
	linksProc := linksProcessor.New(&deps.Store, logger)
	deps.LinksHandler = linksHandler.New(linksProc, logger)

	// Dashboard metrics
	metricsProc := metricsProcessor.New(&deps.Store, logger)
	deps.MetricsHandler = metricsHandler.New(metricsProc, logger)

	// Transport session registry
	deps.SessionRegistry = sessionProcessor.NewRegistry(&deps.Store, logger)
	deps.SessionHandler = sessionHandler.New(deps.SessionRegistry, deps.EventPublisher, logger)

	logger.Info(ctx, "application dependencies initialized")
	return deps, nil
}

// Cleanup releases held connections. Safe to call on a partially
// initialized Dependencies.
func (d *Dependencies) Cleanup() {
	ctx := context.Background()
	if d.KafkaProducer != nil {
		if err := d.KafkaProducer.Close(); err != nil {
			d.Logger.Error(ctx, "failed to close Kafka producer", err)
		}
	}
	if d.RedisClient != nil {
		if err := d.RedisClient.Close(); err != nil {
			d.Logger.Error(ctx, "failed to close Redis client", err)
		}
	}
}
