package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Webhook  WebhookConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	AI       AIConfig
	Crypto   CryptoConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	PublicURL string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret string
}

type WebhookConfig struct {
	// SecretToken authenticates billing webhook calls (X-Webhook-Token).
	// Empty disables the check for local development.
	SecretToken string
}

type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
}

type StorageConfig struct {
	Provider string // local (data URLs) or s3
	S3       S3Config
}

type S3Config struct {
	BucketName string
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
}

type WorkerConfig struct {
	Concurrency int
	// Cron spec for the publish-due sweep registered by the worker scheduler.
	PublishSweepSpec string
	// Port for the worker's prometheus scrape endpoint.
	MetricsPort int
}

type AIConfig struct {
	// DefaultProvider is used when a user has no module settings stored.
	DefaultProvider string
	// AllowMockFallback substitutes the deterministic mock generators when no
	// BYOK key is stored. Off by default: without a key the job fails with a
	// missing-credential error instead of persisting placeholder content.
	AllowMockFallback bool
}

type CryptoConfig struct {
	// SecretKey is the base64-encoded 32-byte secretbox key used to encrypt
	// stored BYOK API keys and integration credentials at rest.
	SecretKey string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "localhost"),
			Port:      getEnvAsInt("SERVER_PORT", 8080),
			PublicURL: getEnv("PUBLIC_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Name:     getEnv("POSTGRES_DB", "contentos"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key"),
		},
		Webhook: WebhookConfig{
			SecretToken: getEnv("WEBHOOK_SECRET_TOKEN", ""),
		},
		Redis: RedisConfig{
			Addr:     fmt.Sprintf("%s:%d", getEnv("REDIS_HOST", "localhost"), getEnvAsInt("REDIS_PORT", 6379)),
			Username: getEnv("REDIS_USERNAME", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Provider: getEnv("STORAGE_PROVIDER", "local"),
			S3: S3Config{
				BucketName: getEnv("S3_BUCKET_NAME", ""),
				Endpoint:   getEnv("S3_ENDPOINT", ""),
				Region:     getEnv("S3_REGION", ""),
				AccessKey:  getEnv("S3_ACCESS_KEY", ""),
				SecretKey:  getEnv("S3_SECRET_KEY", ""),
			},
		},
		Worker: WorkerConfig{
			Concurrency:      getEnvAsInt("WORKER_CONCURRENCY", 10),
			PublishSweepSpec: getEnv("WORKER_PUBLISH_SWEEP_SPEC", "* * * * *"),
			MetricsPort:      getEnvAsInt("WORKER_METRICS_PORT", 9090),
		},
		AI: AIConfig{
			DefaultProvider:   getEnv("AI_DEFAULT_PROVIDER", "gemini"),
			AllowMockFallback: getEnvAsBool("AI_ALLOW_MOCK_FALLBACK", false),
		},
		Crypto: CryptoConfig{
			SecretKey: getEnv("CRYPTO_SECRET_KEY", ""),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
