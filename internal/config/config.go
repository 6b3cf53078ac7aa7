package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database (journal entries)
	DatabaseURL string

	// Redis (magic-link cooldowns). Optional.
	RedisURL string

	// Supabase
	SupabaseURL       string
	SupabaseKey       string
	SupabaseJWTSecret string

	// OpenRouter
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterModel   string
	OpenRouterTimeout time.Duration
	ChatMaxTokens     int

	// Site
	SiteURL     string
	AppTitle    string
	FrontendURL string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		Env:               getEnvOrDefault("ENV", "development"),
		DatabaseURL:       mustGetEnv("DATABASE_URL"),
		RedisURL:          getEnvOrDefault("REDIS_URL", ""),
		SupabaseURL:       mustGetEnv("SUPABASE_URL"),
		SupabaseKey:       mustGetEnv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseJWTSecret: mustGetEnv("SUPABASE_JWT_SECRET"),
		OpenRouterAPIKey:  getEnvOrDefault("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: getEnvOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterModel:   getEnvOrDefault("OPENROUTER_MODEL", "google/gemini-2.5-flash-lite"),
		OpenRouterTimeout: getEnvAsDurationOrDefault("OPENROUTER_TIMEOUT", 30*time.Second),
		ChatMaxTokens:     getEnvAsIntOrDefault("CHAT_MAX_TOKENS", 500),
		SiteURL:           getEnvOrDefault("SITE_URL", "http://localhost:3000/support"),
		AppTitle:          getEnvOrDefault("APP_TITLE", "Clairon"),
		FrontendURL:       getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
		LogFile:           getEnvOrDefault("LOG_FILE", ""),
		LogLevel:          parseLevel(getEnvOrDefault("LOG_LEVEL", "info")),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
