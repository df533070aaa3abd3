// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// CORSAllowedOrigins is the fixed allow-list of wizard origins.
	CORSAllowedOrigins []string
	// APIBearerToken guards the public record and draft endpoints.
	APIBearerToken string
	// AdminJWTSecret guards the admin read endpoints.
	AdminJWTSecret string

	// Scheduling provider proxy.
	CalBaseURL      string
	CalAPIKey       string
	CalEventTypeIDs map[string]int
	CalAPIVersion   string

	// Marketing lead webhook fired after a lead insert.
	LeadsWebhookURL string

	// DraftRetention bounds how long an abandoned wizard draft survives.
	DraftRetention time.Duration
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		APIBearerToken:     getEnv("API_BEARER_TOKEN", ""),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),

		CalBaseURL:      getEnv("CAL_BASE_URL", "https://api.cal.com/v2"),
		CalAPIKey:       getEnv("CAL_API_KEY", ""),
		CalEventTypeIDs: getEnvAsIntMap("CAL_EVENT_TYPE_IDS", map[string]int{}),
		CalAPIVersion:   getEnv("CAL_API_VERSION", "2024-08-13"),

		LeadsWebhookURL: getEnv("LEADS_WEBHOOK_URL", ""),

		DraftRetention: getEnvAsDuration("DRAFT_RETENTION", 30*24*time.Hour),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList parses a comma-separated list, trimming blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvAsIntMap parses "key1=1,key2=2" style mappings.
func getEnvAsIntMap(key string, defaultValue map[string]int) map[string]int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	out := map[string]int{}
	for _, pair := range strings.Split(raw, ",") {
		name, value, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			out[strings.TrimSpace(name)] = n
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
