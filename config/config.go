package config

import (
	"fmt"
	"os"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/confluentinc/confluent-kafka-go/v2/schemaregistry"
	"github.com/spf13/cast"
)

type AppSettings struct {
	Port              string
	CatalogPath       string
	PromoPath         string
	SessionTTL        time.Duration
	ActionBuffer      int
	LogMode           string
	LogFile           string
	BootstrapServers  string
	SchemaRegistryUrl string
	SslCaLocation     string
	ActionsTopic      string
	Username          string
	Password          string
}

// KafkaEnabled reports whether user actions should be produced.
func (s AppSettings) KafkaEnabled() bool {
	return s.BootstrapServers != ""
}

func GetAppSettings() (AppSettings, error) {
	ttl, err := cast.ToDurationE(getEnv("SESSION_TTL", "30m"))
	if err != nil {
		return AppSettings{}, fmt.Errorf("SESSION_TTL: %w", err)
	}
	buffer, err := cast.ToIntE(getEnv("ACTION_BUFFER", "256"))
	if err != nil {
		return AppSettings{}, fmt.Errorf("ACTION_BUFFER: %w", err)
	}
	if _, err := cast.ToUint16E(getEnv("PORT", "8097")); err != nil {
		return AppSettings{}, fmt.Errorf("PORT: %w", err)
	}

	return AppSettings{
		Port:              getEnv("PORT", "8097"),
		CatalogPath:       getEnv("CATALOG_PATH", "data/products.json"),
		PromoPath:         getEnv("PROMO_PATH", ""),
		SessionTTL:        ttl,
		ActionBuffer:      buffer,
		LogMode:           getEnv("LOG_MODE", "development"),
		LogFile:           getEnv("LOG_FILE", ""),
		BootstrapServers:  getEnv("BOOTSTRAP_SERVERS", ""),
		SchemaRegistryUrl: getEnv("REGISTRY", "http://schema-registry:8080/"),
		SslCaLocation:     getEnv("SSL_CA_LOCATION", ""),
		ActionsTopic:      getEnv("TOPIC", "storefront-actions"),
		Username:          getEnv("USERNAME", ""),
		Password:          getEnv("PASSWORD", ""),
	}, nil
}

func GetProducerConfig(settings AppSettings) *kafka.ConfigMap {
	cfg := &kafka.ConfigMap{
		"bootstrap.servers":        settings.BootstrapServers,
		"message.timeout.ms":       10000,
		"message.send.max.retries": 3,
		"acks":                     "all",
	}
	if settings.SslCaLocation != "" {
		_ = cfg.SetKey("ssl.ca.location", settings.SslCaLocation)
		_ = cfg.SetKey("security.protocol", "SSL")
	}
	if settings.Username != "" {
		_ = cfg.SetKey("security.protocol", "SASL_SSL")
		_ = cfg.SetKey("sasl.mechanism", "PLAIN")
		_ = cfg.SetKey("sasl.username", settings.Username)
		_ = cfg.SetKey("sasl.password", settings.Password)
	}
	return cfg
}

func GetRegistryConfig(settings AppSettings) *schemaregistry.Config {
	return schemaregistry.NewConfig(settings.SchemaRegistryUrl)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
