package config

import (
	"os"
	"strings"

	"github.com/pushkindt/pushkind-orders/pkg/database"

	"go.uber.org/zap"
)

type Config struct {
	Port string
	Env  string
	DB   DB
	JWT  JWT

	Kafka   Kafka
	Pricing Pricing
}

type DB struct {
	database.Config
}

type JWT struct {
	SigningKey string
}

type Kafka struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// Pricing holds the hub-wide price resolution policy. It is constructed once
// at startup and passed down; business logic never reads the environment.
type Pricing struct {
	FallbackToDefaultLevel bool
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Port: getEnv("APP_PORT", log),
		Env:  os.Getenv("ENV"),
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnv("DB_SSLMODE", log),
			},
		},
		JWT: JWT{
			SigningKey: getEnv("JWT_SIGNING_KEY", log),
		},
		Kafka: Kafka{
			Enabled: os.Getenv("KAFKA_ENABLED") == "true",
			Brokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			Topic:   os.Getenv("KAFKA_TOPIC_ORDERS"),
		},
		Pricing: Pricing{
			FallbackToDefaultLevel: os.Getenv("PRICING_FALLBACK_TO_DEFAULT_LEVEL") == "true",
		},
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("required environment variable is not set", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
