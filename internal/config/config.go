package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port int

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost string
	RedisPort int
	CacheTTL  time.Duration

	RabbitHost     string
	RabbitPort     int
	RabbitUser     string
	RabbitPassword string

	ConsulHost string
	ConsulPort int

	// IdentityService is the Consul service name of the identity collaborator.
	IdentityService string

	PaymentGatewaySecret string
}

func Load() (Config, error) {
	cfg := load()
	if cfg.PaymentGatewaySecret == "" {
		return Config{}, errors.New("PAYMENT_GATEWAY_SECRET is required")
	}
	return cfg, nil
}

// LoadWorker reads the configuration for processes that never touch the
// payment path, so the gateway secret is not required.
func LoadWorker() Config {
	return load()
}

func load() Config {
	cacheTTLSec := getenvInt("CACHE_TTL_SECONDS", 300)

	return Config{
		Port:                 getenvInt("PORT", 8080),
		DBHost:               getenv("DB_HOST", "localhost"),
		DBPort:               getenvInt("DB_PORT", 5432),
		DBUser:               getenv("DB_USER", "storefront"),
		DBPassword:           getenv("DB_PASSWORD", "storefront"),
		DBName:               getenv("DB_NAME", "storefront"),
		RedisHost:            getenv("REDIS_HOST", "localhost"),
		RedisPort:            getenvInt("REDIS_PORT", 6379),
		CacheTTL:             time.Duration(cacheTTLSec) * time.Second,
		RabbitHost:           getenv("RABBITMQ_HOST", "localhost"),
		RabbitPort:           getenvInt("RABBITMQ_PORT", 5672),
		RabbitUser:           getenv("RABBITMQ_USER", "guest"),
		RabbitPassword:       getenv("RABBITMQ_PASSWORD", "guest"),
		ConsulHost:           getenv("CONSUL_HOST", "localhost"),
		ConsulPort:           getenvInt("CONSUL_PORT", 8500),
		IdentityService:      getenv("IDENTITY_SERVICE", "identity-service"),
		PaymentGatewaySecret: strings.TrimSpace(os.Getenv("PAYMENT_GATEWAY_SECRET")),
	}
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
