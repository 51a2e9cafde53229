// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr           string
	JWTSigningKey  string
	JWTIssuer      string
	AccessTokenTTL time.Duration
	InvitationTTL  time.Duration

	DatabaseURL string
	HTTP        HTTPConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
}

// HTTPConfig bounds how long the server waits on slow clients.
type HTTPConfig struct {
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

// RedisConfig holds connection settings for the real-time broadcast channel.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for the audit event topic.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:           envOr("BOH_ADDR", ":8080"),
		JWTSigningKey:  envOr("BOH_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:      envOr("BOH_JWT_ISSUER", "bagofholding"),
		AccessTokenTTL: envDuration("BOH_ACCESS_TOKEN_TTL", time.Hour),
		InvitationTTL:  envDuration("BOH_INVITATION_TTL", 72*time.Hour),
		DatabaseURL:    os.Getenv("BOH_DATABASE_URL"),
		HTTP: HTTPConfig{
			ReadHeaderTimeout: envDuration("BOH_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       envDuration("BOH_HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:      envDuration("BOH_HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:       envDuration("BOH_HTTP_IDLE_TIMEOUT", 2*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("BOH_REDIS_URL"),
			PoolSize:     envInt("BOH_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("BOH_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("BOH_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("BOH_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("BOH_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("BOH_KAFKA_BROKERS")),
			Topic:   envOr("BOH_KAFKA_AUDIT_TOPIC", "bagofholding.audit"),
		},
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
