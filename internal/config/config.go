// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv       string
	Port         string
	DatabaseURL  string
	RedisURL     string
	RapidAPIKey  string
	RapidAPIHost string
	LogLevel     string
	LogFormat    string

	// CallerRateLimit is admissions per caller IP per minute on the check
	// endpoint; APIRateLimit is the shared twitter241 budget per minute.
	CallerRateLimit int
	APIRateLimit    int
}

func Load() (*Config, error) {
	// Best-effort .env loading for local development; real deployments set
	// the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:       getEnv("APP_ENV", "development"),
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		RedisURL:     getEnv("REDIS_URL", ""),
		RapidAPIKey:  getEnv("X_RAPIDAPI_KEY", ""),
		RapidAPIHost: getEnv("X_RAPIDAPI_HOST", "twitter241.p.rapidapi.com"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.CallerRateLimit, err = getEnvInt("CALLER_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.APIRateLimit, err = getEnvInt("API_RATE_LIMIT", 100); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CallerRateLimit <= 0 {
		return nil, fmt.Errorf("CALLER_RATE_LIMIT must be positive")
	}
	if cfg.APIRateLimit <= 0 {
		return nil, fmt.Errorf("API_RATE_LIMIT must be positive")
	}

	// RapidAPI key is optional on purpose: without it the twitter client
	// reports every fetch as unavailable and checks degrade to zero scores.

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
