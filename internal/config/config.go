package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Settlement SettlementConfig
	Alert      AlertConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

// SettlementConfig tunes the batch pipeline.
type SettlementConfig struct {
	PartitionGridSize   int // parallel id-range partitions per creation run
	WorkerPoolSize      int // concurrent partition workers
	BrandChunkSize      int // brands loaded per aggregation chunk
	SkipLimit           int // per-run tolerated data-access failures
	CompletionGraceDays int // days before PENDING aggregates auto-complete
	LockTTLMinutes      int // run-lock TTL per job
}

// AlertConfig points at the chat-ops webhook used for batch failure alerts.
type AlertConfig struct {
	WebhookURL     string
	TimeoutSeconds int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Marketplace Settlement"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "marketplace"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Settlement: SettlementConfig{
			PartitionGridSize:   getEnvInt("SETTLEMENT_PARTITION_GRID", 4),
			WorkerPoolSize:      getEnvInt("SETTLEMENT_WORKERS", 4),
			BrandChunkSize:      getEnvInt("SETTLEMENT_BRAND_CHUNK", 100),
			SkipLimit:           getEnvInt("SETTLEMENT_SKIP_LIMIT", 100),
			CompletionGraceDays: getEnvInt("SETTLEMENT_GRACE_DAYS", 7),
			LockTTLMinutes:      getEnvInt("SETTLEMENT_LOCK_TTL_MIN", 90),
		},
		Alert: AlertConfig{
			WebhookURL:     getEnv("ALERT_WEBHOOK_URL", ""),
			TimeoutSeconds: getEnvInt("ALERT_TIMEOUT_SECONDS", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks invariants the pipeline depends on.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.Alert.WebhookURL == "" {
			fmt.Println("WARNING: ALERT_WEBHOOK_URL not set - batch failure alerts will not be delivered")
		}
	}

	if c.Settlement.PartitionGridSize < 1 {
		return fmt.Errorf("SETTLEMENT_PARTITION_GRID must be >= 1")
	}
	if c.Settlement.WorkerPoolSize < 1 {
		return fmt.Errorf("SETTLEMENT_WORKERS must be >= 1")
	}
	if c.Settlement.SkipLimit < 0 {
		return fmt.Errorf("SETTLEMENT_SKIP_LIMIT must be >= 0")
	}
	// The longest job timeout is one hour; a shorter TTL would let the lock
	// expire under a still-running job and re-open the overlap window.
	if c.Settlement.LockTTLMinutes < 60 {
		return fmt.Errorf("SETTLEMENT_LOCK_TTL_MIN must be >= 60 to outlive the longest job timeout")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
