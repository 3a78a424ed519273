package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var ErrEmptyEnvironmentVariable = errors.New("empty environment variable")

// Config holds all application configuration
type Config struct {
	Database    DatabaseConfig
	Auth        AuthConfig
	Attribution AttributionConfig
	Kafka       KafkaConfig
	Redis       RedisConfig
	RateLimit   RateLimitConfig
	WorkerPool  WorkerPoolConfig
	Server      ServerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Username string
	Password string
	Name     string
}

// ConnectionString builds the Postgres connection string
func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s", d.Username, d.Password, d.Host, d.Name)
}

// AuthConfig holds authentication-related configuration
type AuthConfig struct {
	JWTSecret string
}

// AttributionConfig holds attribution engine settings
type AttributionConfig struct {
	// MatchWindowHours is the lookback window for temporal matching.
	// Absent or invalid values fall back to 24.
	MatchWindowHours int
}

// DefaultMatchWindowHours is used when ATTR_MATCH_WINDOW_HOURS is unset or invalid.
const DefaultMatchWindowHours = 24

// KafkaConfig holds Kafka/event streaming configuration
type KafkaConfig struct {
	Brokers       string
	MessagesTopic string
	EventsTopic   string
	ConsumerGroup string
}

// RedisConfig holds Redis connection settings for rate limiting
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// RateLimitConfig holds rate limiting settings for the public redirect endpoint
type RateLimitConfig struct {
	// RedirectRPM is the per-IP request budget per minute for /t/:slug.
	RedirectRPM int
}

// WorkerPoolConfig holds worker pool configuration for inbound message processing
type WorkerPoolConfig struct {
	MessageWorkers int
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
	// DashboardOrigin is the allowed CORS origin for the dashboard frontend.
	DashboardOrigin string
}

// Load reads and validates all required environment variables
func Load() (*Config, error) {
	// Load env.local in non-production environments
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load("env.local"); err != nil {
			return nil, fmt.Errorf("failed to load env.local: %w", err)
		}
	}

	cfg := &Config{}

	// Database configuration
	var err error
	if cfg.Database.Host, err = requireEnv("DB_HOST"); err != nil {
		return nil, err
	}
	if cfg.Database.Username, err = requireEnv("DB_USERNAME"); err != nil {
		return nil, err
	}
	if cfg.Database.Password, err = requireEnv("DB_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.Database.Name, err = requireEnv("DB_NAME"); err != nil {
		return nil, err
	}

	// Auth configuration
	if cfg.Auth.JWTSecret, err = requireEnv("JWT_SECRET"); err != nil {
		return nil, err
	}

	// Attribution configuration
	cfg.Attribution.MatchWindowHours = intEnv("ATTR_MATCH_WINDOW_HOURS", DefaultMatchWindowHours)

	// Kafka configuration
	cfg.Kafka.Brokers = envOrDefault("KAFKA_BROKERS", "localhost:9092")
	cfg.Kafka.MessagesTopic = envOrDefault("KAFKA_MESSAGES_TOPIC", "whatsapp-messages")
	cfg.Kafka.EventsTopic = envOrDefault("KAFKA_EVENTS_TOPIC", "attribution-events")
	cfg.Kafka.ConsumerGroup = envOrDefault("KAFKA_CONSUMER_GROUP", "attribution-workers")

	// Redis configuration
	cfg.Redis.Enabled = os.Getenv("REDIS_ENABLED") == "true"
	cfg.Redis.Host = envOrDefault("REDIS_HOST", "localhost")
	cfg.Redis.Port = intEnv("REDIS_PORT", 6379)
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.DB = intEnv("REDIS_DB", 0)

	// Rate limit configuration
	cfg.RateLimit.RedirectRPM = intEnv("REDIRECT_RATE_LIMIT_RPM", 60)

	// Worker pool configuration
	cfg.WorkerPool.MessageWorkers = intEnv("MESSAGE_WORKER_POOL_SIZE", 10)

	// Server configuration
	cfg.Server.Port = intEnv("SERVER_PORT", 8080)
	cfg.Server.DashboardOrigin = envOrDefault("DASHBOARD_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// requireEnv returns the value of the environment variable or an error if empty
func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyEnvironmentVariable, key)
	}
	return value, nil
}

// envOrDefault returns the value of the environment variable or a default
func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// intEnv parses an integer environment variable, falling back on missing,
// unparsable, or non-positive values.
func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
