package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration of the bridge server.
type Config struct {
	Port             string
	JWTSecret        string
	TokenTTL         time.Duration
	GeminiAPIKey     string
	ElevenLabsAPIKey string
	// UseMockServices forces the mock recognizer/translator/
	// synthesizer, for local development without credentials.
	UseMockServices bool
}

// Load reads configuration from .env and the environment.
func Load() Config {
	// .env is optional, real deployments use the environment.
	godotenv.Load()

	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		JWTSecret:        getEnv("JWT_SECRET", "development-secret"),
		TokenTTL:         24 * time.Hour,
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		ElevenLabsAPIKey: os.Getenv("ELEVEN_LABS_API_KEY"),
		UseMockServices:  os.Getenv("USE_MOCK_SERVICES") == "true",
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil {
			cfg.TokenTTL = parsed
		}
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
