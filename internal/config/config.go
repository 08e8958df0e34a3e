// Package config handles application configuration loading from environment
// variables, with optional .env file support for local development. It
// provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// secretKeyPlaceholder is the value shipped in .env.example. Starting with
// it still in place is a configuration error.
const secretKeyPlaceholder = "tu-clave-secreta-muy-segura-aqui-cambiar-en-produccion"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// SecretKey signs operator-facing tokens. Never defaulted.
	SecretKey string

	// PostgreSQL connection. DatabaseURL wins over the discrete fields.
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	// Valkey (Redis-compatible cache). Optional: the service runs without it.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// AI provider selection and per-provider credentials.
	AIProvider     string // "openai", "deepseek", "gemini"
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string
	DeepSeekAPIKey string
	DeepSeekModel  string
	DeepSeekURL    string
	GeminiAPIKey   string
	GeminiModel    string
	GeminiImgModel string

	// Image generation
	ImageEnabled  bool
	ImageProvider string
	ImageSize     string

	// Content generation tuning
	MaxContentLength int
	ContentLanguage  string
	WritingStyle     string
	JobTimeout       time.Duration
	MaxAttempts      int

	// Rate limiting
	RateLimitEnabled bool
	RequestsPerMin   int
	RequestsPerHour  int
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first (existing env vars win). Returns an error if
// critical values are missing or left at placeholder values.
func Load() (*Config, error) {
	// Ignore a missing .env; containers inject real env vars instead.
	_ = godotenv.Load()

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8000"),
		Env:  envOrDefault("APP_ENV", "development"),

		SecretKey: os.Getenv("SECRET_KEY"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:      envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:      envOrDefault("POSTGRES_USER", "autopublicador"),
		DBPassword:  envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:      envOrDefault("POSTGRES_DB", "autopublicador"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		AIProvider:     envOrDefault("AI_PROVIDER", "deepseek"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    envOrDefault("OPENAI_MODEL", "gpt-4"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		DeepSeekAPIKey: os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekModel:  envOrDefault("DEEPSEEK_MODEL", "deepseek-chat"),
		DeepSeekURL:    envOrDefault("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    envOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiImgModel: os.Getenv("GEMINI_IMAGE_MODEL"),

		ImageEnabled:  envBool("ENABLE_IMAGE_GENERATION", true),
		ImageProvider: envOrDefault("IMAGE_PROVIDER", "gemini"),
		ImageSize:     envOrDefault("IMAGE_SIZE", "1024x1024"),

		MaxContentLength: envInt("MAX_CONTENT_LENGTH", 2000),
		ContentLanguage:  envOrDefault("CONTENT_LANGUAGE", "es"),
		WritingStyle:     envOrDefault("WRITING_STYLE", "profesional"),
		JobTimeout:       time.Duration(envInt("GENERATION_TIMEOUT_SECONDS", 120)) * time.Second,
		MaxAttempts:      envInt("MAX_ATTEMPTS", 3),

		RateLimitEnabled: envBool("RATE_LIMIT_ENABLED", true),
		RequestsPerMin:   envInt("REQUESTS_PER_MINUTE", 60),
		RequestsPerHour:  envInt("REQUESTS_PER_HOUR", 1000),
	}

	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY must be set")
	}
	if cfg.SecretKey == secretKeyPlaceholder {
		return nil, fmt.Errorf("SECRET_KEY is still the placeholder value; set a real secret")
	}

	if cfg.Env == "production" && cfg.DBPassword == "changeme" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
	}

	switch cfg.AIProvider {
	case "openai", "deepseek", "gemini":
	default:
		return nil, fmt.Errorf("AI_PROVIDER must be one of openai, deepseek, gemini (got %q)", cfg.AIProvider)
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string. DATABASE_URL takes
// precedence over the discrete POSTGRES_* variables.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt reads an integer environment variable, returning a fallback if
// unset or unparseable.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envBool reads a boolean environment variable ("true"/"false", "1"/"0").
func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
