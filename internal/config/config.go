package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Primary provider (Asaas)
	AsaasAPIKey  string
	AsaasBaseURL string

	// Secondary provider (Efí) — optional; empty credentials disable it.
	EfiClientID     string
	EfiClientSecret string
	EfiBaseURL      string

	// Fetch limits for the consolidated view.
	ClientesLimit  int
	CobrancasLimit int
	HistoricoLimit int

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience. MaxRetries is 0 by default: provider failures are
	// surfaced (or absorbed, for Efí) immediately, not retried.
	MaxRetries     int
	InitialBackoff time.Duration

	// Cache (cliente-detalhes responses)
	CacheTTL time.Duration

	// Rate limiting (health check is exempt)
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// CORS
	CORSOrigin      string
	CORSCredentials bool

	// Observability
	OTLPEndpoint string

	// Auth
	JWTSecret         string
	TokenTTL          time.Duration
	AdminUser         string
	AdminPassword     string
	AdminPasswordHash string // bcrypt; takes precedence over AdminPassword when set
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 3000),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AsaasAPIKey:  getEnv("ASAAS_API_KEY", ""),
		AsaasBaseURL: getEnv("ASAAS_BASE_URL", "https://www.asaas.com/api/v3"),

		EfiClientID:     getEnv("EFI_CLIENT_ID", ""),
		EfiClientSecret: getEnv("EFI_CLIENT_SECRET", ""),
		EfiBaseURL:      getEnv("EFI_BASE_URL", "https://cobrancas-h.api.efipay.com.br"),

		ClientesLimit:  getEnvInt("CLIENTES_LIMIT", 1000),
		CobrancasLimit: getEnvInt("COBRANCAS_LIMIT", 1000),
		HistoricoLimit: getEnvInt("HISTORICO_LIMIT", 2000),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 0),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),

		CORSOrigin:      getEnv("CORS_ORIGIN", "*"),
		CORSCredentials: getEnv("CORS_CREDENTIALS", "false") == "true",

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		JWTSecret:         getEnv("JWT_SECRET", "medup-secret-key"),
		TokenTTL:          getEnvDuration("TOKEN_TTL", 24*time.Hour),
		AdminUser:         getEnv("ADMIN_USER", "Tiago"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", "medup1302@"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
	}
}

// EfiConfigured reports whether the secondary provider credentials are set.
func (c *Config) EfiConfigured() bool {
	return c.EfiClientID != "" && c.EfiClientSecret != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
