package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string
	Env         string
	DatabaseURL string // PostgreSQL; preferred when set
	SQLitePath  string // development fallback store
	RedisURL    string // shared rate-limit counters; in-memory when empty

	AppSecret   string   // signs session cookies
	InviteCodes []string // codes accepted at login
}

// devSecret is only ever used in development; Load panics before it can
// reach production.
const devSecret = "ruang-dengar-development-secret-0000000000"

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),
		RedisURL:    os.Getenv("REDIS_URL"),
		AppSecret:   os.Getenv("APP_SECRET"),
	}

	// Parse invite codes (comma-separated)
	for _, code := range strings.Split(os.Getenv("INVITE_CODES"), ",") {
		code = strings.TrimSpace(code)
		if code != "" {
			cfg.InviteCodes = append(cfg.InviteCodes, code)
		}
	}

	if cfg.Env == "production" {
		if len(cfg.AppSecret) < 32 {
			panic("APP_SECRET must be at least 32 characters in production")
		}
		if cfg.DatabaseURL == "" {
			panic("DATABASE_URL is required in production")
		}
	}

	if cfg.AppSecret == "" {
		cfg.AppSecret = devSecret
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
