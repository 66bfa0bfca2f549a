package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	DatabaseURL         string
	JWTSecret           string
	Port                string
	AppEnv              string
	LogLevel            string
	CORSOrigins         string
	FirebaseCredentials string
	FirebaseProjectID   string
	RedisURL            string
	SeedCron            string
	FeedCacheTTL        time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	//nolint:errcheck
	godotenv.Load()

	return &Config{
		DatabaseURL:         getEnv("DATABASE_URL", "challenges.db"),
		JWTSecret:           getEnv("JWT_SECRET", defaultJWTSecret),
		Port:                getEnv("PORT", "8080"),
		AppEnv:              getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		CORSOrigins:         getEnv("CORS_ORIGINS", "*"),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		FirebaseProjectID:   getEnv("FIREBASE_PROJECT_ID", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		SeedCron:            getEnv("SEED_CRON", "@daily"),
		FeedCacheTTL:        getDuration("FEED_CACHE_TTL", 30*time.Second),
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate rejects settings that are only acceptable in development.
func (c *Config) Validate() error {
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret) {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.FeedCacheTTL < time.Second {
		return errors.New("FEED_CACHE_TTL must be at least one second")
	}
	return nil
}

// CloudEnabled reports whether Firebase should be initialized.
func (c *Config) CloudEnabled() bool {
	return c.FirebaseCredentials != "" || c.FirebaseProjectID != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
