package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Auth           AuthConfig
	RateLimit      RateLimitConfig
	Email          EmailConfig
	CORS           CORSConfig
	Tracing        TracingConfig
	Logging        LoggingConfig
	AdminBootstrap AdminBootstrapConfig
	Environment    string
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MaxIdle        int
}

type RedisConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
	Issuer    string
}

type RateLimitConfig struct {
	// LoginAttempts per LoginWindow, keyed by client IP.
	LoginAttempts int
	LoginWindow   time.Duration

	// PublicPerMinute caps anonymous analytics traffic; 0 disables.
	PublicPerMinute int

	TrustedProxyCIDRs []string
}

type EmailConfig struct {
	Enabled      bool
	ResendAPIKey string
	From         string
	CompanyName  string
	TemplatesDir string
}

type CORSConfig struct {
	AllowAllOrigins bool
	AllowedOrigins  []string
}

type TracingConfig struct {
	Enabled      bool
	Exporter     string
	ServiceName  string
	OTLPEndpoint string
	SampleRate   float64
}

type LoggingConfig struct {
	Level  string
	Format string
}

type AdminBootstrapConfig struct {
	Username string
	Password string
	Email    string
}

func Load() (Config, error) {
	environment := getEnv("ENVIRONMENT", "development")

	cfg := Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvInt("SERVER_PORT", 8080),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 25),
			MaxIdle:        getEnvInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
			Issuer:    getEnv("JWT_ISSUER", "talentpulse"),
		},
		RateLimit: RateLimitConfig{
			LoginAttempts:     getEnvInt("RATE_LIMIT_LOGIN_ATTEMPTS", 5),
			LoginWindow:       time.Duration(getEnvInt("RATE_LIMIT_LOGIN_WINDOW_MINUTES", 15)) * time.Minute,
			PublicPerMinute:   getEnvInt("RATE_LIMIT_PUBLIC", 120),
			TrustedProxyCIDRs: getEnvList("TRUSTED_PROXY_CIDRS"),
		},
		Email: EmailConfig{
			Enabled:      getEnvBool("EMAIL_ENABLED", false),
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("EMAIL_FROM", "TalentPulse <outreach@talentpulse.dev>"),
			CompanyName:  getEnv("EMAIL_COMPANY_NAME", "TalentPulse"),
			TemplatesDir: getEnv("EMAIL_TEMPLATES_DIR", "web/email/templates"),
		},
		CORS: CORSConfig{
			AllowAllOrigins: environment == "development",
			AllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS"),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvBool("TRACING_ENABLED", false),
			Exporter:     getEnv("TRACING_EXPORTER", "none"),
			ServiceName:  getEnv("TRACING_SERVICE_NAME", "talentpulse"),
			OTLPEndpoint: getEnv("TRACING_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   getEnvFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		AdminBootstrap: AdminBootstrapConfig{
			Username: getEnv("ADMIN_USERNAME", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
			Email:    getEnv("ADMIN_EMAIL", ""),
		},
		Environment: environment,
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Email.Enabled && cfg.Email.ResendAPIKey == "" {
		return Config{}, fmt.Errorf("RESEND_API_KEY is required when EMAIL_ENABLED=true")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}
