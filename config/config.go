package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	ReleaseMode = "release"
	DebugMode   = "debug"
)

type Config struct {
	Port        string
	Mode        string
	DatabaseURL string
	JWTSecret   string
	LogLevel    string

	// Google sign-in; audience check is skipped when empty
	GoogleClientID string

	// Store connection retry
	DBMaxRetries   int
	DBRetryDelay   time.Duration
	DBRetryMaxWait time.Duration
	DBPingInterval time.Duration

	// Redis list cache; disabled when RedisAddress is empty
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	ListCacheTTL  time.Duration

	RateLimitPerMinute int
	RateLimitBurst     int

	// Email Configuration; welcome mail is disabled when SMTPHost is empty
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// Load reads configuration from the environment, after merging an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Mode:        getEnv("GIN_MODE", DebugMode),
		DatabaseURL: getEnv("DATABASE_URL", "user:password@tcp(localhost:3306)/prompteria?charset=utf8mb4&parseTime=True&loc=Local"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		DBMaxRetries:   getEnvInt("DB_MAX_RETRIES", 5),
		DBRetryDelay:   time.Duration(getEnvInt("DB_RETRY_DELAY_MS", 5000)) * time.Millisecond,
		DBRetryMaxWait: 30 * time.Second,
		DBPingInterval: time.Duration(getEnvInt("DB_PING_INTERVAL_SECONDS", 60)) * time.Second,

		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		ListCacheTTL:  time.Duration(getEnvInt("LIST_CACHE_TTL_SECONDS", 30)) * time.Second,

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 2525),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@prompteria.app"),
		FromName:     getEnv("FROM_NAME", "Prompteria"),
	}
}

// Validate rejects configurations the server cannot safely start with.
func (c *Config) Validate() error {
	if c.Mode == ReleaseMode && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in release mode")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.DBMaxRetries < 1 {
		return errors.New("DB_MAX_RETRIES must be at least 1")
	}
	if c.DBRetryDelay <= 0 {
		return errors.New("DB_RETRY_DELAY_MS must be positive")
	}
	if c.DBPingInterval <= 0 {
		return errors.New("DB_PING_INTERVAL_SECONDS must be positive")
	}
	if c.ListCacheTTL <= 0 {
		return errors.New("LIST_CACHE_TTL_SECONDS must be positive")
	}
	if c.RateLimitPerMinute < 1 || c.RateLimitBurst < 1 {
		return errors.New("rate limit settings must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
