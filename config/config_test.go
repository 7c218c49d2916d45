package config

import (
	"os"
	"testing"

	"go.uber.org/zap"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	for key, val := range map[string]string{
		"APP_PORT":        ":8080",
		"DB_HOST":         "localhost",
		"DB_PORT":         "5432",
		"DB_USER":         "orders",
		"DB_PASSWORD":     "orders",
		"DB_NAME":         "orders",
		"DB_SSLMODE":      "disable",
		"JWT_SIGNING_KEY": "test-secret",
	} {
		t.Setenv(key, val)
	}
}

func TestLoad_PricingFallbackToggle(t *testing.T) {
	setRequiredEnv(t)

	cfg := Load(zap.NewNop())
	if cfg.Pricing.FallbackToDefaultLevel {
		t.Fatalf("fallback expected off by default")
	}

	t.Setenv("PRICING_FALLBACK_TO_DEFAULT_LEVEL", "true")
	cfg = Load(zap.NewNop())
	if !cfg.Pricing.FallbackToDefaultLevel {
		t.Fatalf("fallback expected on")
	}
}

func TestLoad_KafkaBrokerList(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092 ,")
	t.Setenv("KAFKA_TOPIC_ORDERS", "orders.events")

	cfg := Load(zap.NewNop())
	if !cfg.Kafka.Enabled || cfg.Kafka.Topic != "orders.events" {
		t.Fatalf("kafka config mismatch: %+v", cfg.Kafka)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "kafka-1:9092" || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Fatalf("brokers mismatch: %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_PanicsOnMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	// t.Setenv выше регистрирует откат, поэтому Unsetenv безопасен
	os.Unsetenv("JWT_SIGNING_KEY")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on missing JWT_SIGNING_KEY")
		}
	}()
	Load(zap.NewNop())
}
