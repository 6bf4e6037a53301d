package config

import (
	"os"
	"strconv"
	"time"
)

const defaultRequestTimeoutSeconds = 10

// Config holds the application configuration
// Note: This is a stateless service - no database or auth secrets needed
type Config struct {
	// Environment
	Environment string
	Port        string

	// Observability
	SentryDSN string // Sentry DSN for error tracking

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from an upstream gateway
	AuthMode string

	// Summary critic (optional)
	OpenAIAPIKey  string
	CriticEnabled bool
	CriticModel   string

	// Langfuse tracing of critic calls; keys are read from LANGFUSE_* by the SDK
	LangfuseEnabled bool

	// Upper bound on one request, search included
	RequestTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		Port:            getEnv("PORT", "8080"),
		SentryDSN:       getEnv("SENTRY_DSN", ""),
		AuthMode:        getEnv("AUTH_MODE", "none"), // Default to no auth for self-hosted
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		CriticEnabled:   getEnv("CRITIC_ENABLED", "false") == "true",
		CriticModel:     getEnv("CRITIC_MODEL", ""),
		LangfuseEnabled: getEnv("LANGFUSE_ENABLED", "false") == "true",
		RequestTimeout:  time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", defaultRequestTimeoutSeconds)) * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

// IsGatewayMode returns true if running behind an authenticating gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}

// IsProduction gates production-only integrations such as CloudWatch
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
