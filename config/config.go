package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all environment-driven settings for the creation service.
type Config struct {
	// Server
	Port string
	Env  string

	// Generation backend (script enhancement, TTS, clips, assembly)
	GenBackendURL string

	// Supabase
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseJWTSecret  string

	// Redis (draft snapshots)
	RedisURL string

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceProID    string

	// Pipeline tuning
	TargetClipsCount int
}

// Load reads configuration from the environment. A .env file is honored if
// present so local development matches deployment.
func Load() *Config {
	godotenv.Load()

	return &Config{
		Port:                getEnvOrDefault("PORT", "8080"),
		Env:                 getEnvOrDefault("ENV", "development"),
		GenBackendURL:       getEnvOrDefault("GEN_BACKEND_URL", "http://localhost:8000"),
		SupabaseURL:         mustGetEnv("SUPABASE_URL"),
		SupabaseServiceKey:  mustGetEnv("SUPABASE_SERVICE_KEY"),
		SupabaseJWTSecret:   mustGetEnv("SUPABASE_JWT_SECRET"),
		RedisURL:            getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		StripeSecretKey:     getEnvOrDefault("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnvOrDefault("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceProID:    getEnvOrDefault("STRIPE_PRICE_PRO_ID", ""),
		TargetClipsCount:    getEnvAsIntOrDefault("TARGET_CLIPS_COUNT", 3),
	}
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
