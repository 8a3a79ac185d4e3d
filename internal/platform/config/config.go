package config

import (
	"os"
	"strings"
	"time"

	id "foodshare/pkg/domain"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	// InitialAdmin is the administrative authority at boot. Transferable at
	// runtime through the ledger service.
	InitialAdmin id.Identity
	Redis        RedisConfig
	Kafka        KafkaConfig
	// PostgresDSN, when set, switches the registry stores from memory to
	// Postgres. The ledger itself stays in memory.
	PostgresDSN string
}

// RedisConfig configures the optional Redis event stream sink.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Stream       string
}

// KafkaConfig configures the optional Kafka event sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("FOODSHARE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	admin := os.Getenv("FOODSHARE_ADMIN_IDENTITY")
	if admin == "" {
		admin = "admin"
	}

	var brokers []string
	if raw := os.Getenv("FOODSHARE_KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		InitialAdmin:  id.Identity(admin),
		Redis: RedisConfig{
			URL:          os.Getenv("FOODSHARE_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			Stream:       os.Getenv("FOODSHARE_REDIS_STREAM"),
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   os.Getenv("FOODSHARE_KAFKA_TOPIC"),
		},
		PostgresDSN: os.Getenv("FOODSHARE_POSTGRES_DSN"),
	}
}
