package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// devJWTSecret is only acceptable outside production.
const devJWTSecret = "fallback-secret-key-for-dev-only"

// Config holds application configuration. It is loaded once at startup and
// passed explicitly to the components that need it.
type Config struct {
	Env string

	// Server
	Port string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Audit trail
	AuditWriteTimeout  time.Duration
	RedisURL           string
	AuditDeadLetterKey string

	// Metrics
	MetricsAPIKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "storefront"),
		DBPassword: getEnv("DB_PASSWORD", "storefront"),
		DBName:     getEnv("DB_NAME", "storefront"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "storefront.db"),

		JWTSecret: getEnv("JWT_SECRET", devJWTSecret),

		RedisURL:           getEnv("REDIS_URL", ""),
		AuditDeadLetterKey: getEnv("AUDIT_DEAD_LETTER_KEY", "storefront:audit:dead-letters"),

		MetricsAPIKey: getEnv("METRICS_API_KEY", ""),
	}

	cfg.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", 24*time.Hour)
	cfg.AuditWriteTimeout = getDuration("AUDIT_WRITE_TIMEOUT", 5*time.Second)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.IsProduction() && c.JWTSecret == devJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return errors.New("DB_DRIVER must be postgres or sqlite")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration parses a duration variable, falling back on invalid or non-positive input.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
