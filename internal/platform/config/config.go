package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	Environment     string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	CacheTTL        time.Duration

	Auth     AuthConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// AuthConfig holds bearer token validation settings.
type AuthConfig struct {
	JWTSigningKey string
	Issuer        string
	Audience      string
}

// PostgresConfig selects the durable record store. An empty DSN keeps records in memory.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings. An empty URL disables the cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the analysis ingest consumer. No brokers disables it.
type KafkaConfig struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
	Partitions    int32
	Replication   int16
}

const devSigningKey = "dev-secret-key-change-in-production"

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:            getEnv("HEALTHHUB_ADDR", ":8080"),
		Environment:     getEnv("HEALTHHUB_ENV", "development"),
		LogLevel:        getEnv("HEALTHHUB_LOG_LEVEL", "info"),
		LogFormat:       getEnv("HEALTHHUB_LOG_FORMAT", "json"),
		ShutdownTimeout: getDuration("HEALTHHUB_SHUTDOWN_TIMEOUT", 10*time.Second),
		CacheTTL:        getDuration("HEALTHHUB_CACHE_TTL", 5*time.Minute),
		Auth: AuthConfig{
			JWTSigningKey: getEnv("HEALTHHUB_JWT_SIGNING_KEY", devSigningKey),
			Issuer:        getEnv("HEALTHHUB_JWT_ISSUER", "healthhub"),
			Audience:      getEnv("HEALTHHUB_JWT_AUDIENCE", "healthhub-api"),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("HEALTHHUB_POSTGRES_DSN"),
			MaxOpenConns:    getInt("HEALTHHUB_POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getInt("HEALTHHUB_POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("HEALTHHUB_POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("HEALTHHUB_REDIS_URL"),
			PoolSize:     getInt("HEALTHHUB_REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("HEALTHHUB_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("HEALTHHUB_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("HEALTHHUB_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("HEALTHHUB_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(os.Getenv("HEALTHHUB_KAFKA_BROKERS")),
			Topic:         getEnv("HEALTHHUB_KAFKA_TOPIC", "biomarker.analysis.v1"),
			ConsumerGroup: getEnv("HEALTHHUB_KAFKA_GROUP", "healthhub-biomarker-ingest"),
			Partitions:    int32(getInt("HEALTHHUB_KAFKA_PARTITIONS", 3)),
			Replication:   int16(getInt("HEALTHHUB_KAFKA_REPLICATION", 1)),
		},
	}
	return cfg, cfg.Validate()
}

// Validate rejects development defaults outside development.
func (c Server) Validate() error {
	if c.Environment != "development" && c.Auth.JWTSigningKey == devSigningKey {
		return fmt.Errorf("HEALTHHUB_JWT_SIGNING_KEY must be set in %s", c.Environment)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("HEALTHHUB_CACHE_TTL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
