package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	FrontendOrigin string

	// Database
	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string

	// LLM
	LLMProvider        string
	LLMMaxOutputTokens int
	LLMTimeout         time.Duration
	GeminiAPIKey       string
	GeminiModel        string
	OpenRouterAPIKey   string
	OpenRouterBase     string
	OpenRouterModel    string
	OpenRouterAppTitle string
	OpenRouterReferer  string

	// Uploads
	UploadDir      string
	MaxUploadBytes int64

	LogLevel  string
	LogFormat string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// Load reads environment variables, optionally from a .env file if present.
func Load() Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	cfg := Config{
		Port:               getEnv("PORT", "4000"),
		FrontendOrigin:     getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),
		DatabaseDriver:     getEnv("DATABASE_DRIVER", DriverPostgres),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SQLitePath:         getEnv("SQLITE_PATH", "resumes.db"),
		LLMProvider:        getEnv("LLM_PROVIDER", ProviderGemini),
		LLMMaxOutputTokens: getEnvInt("LLM_MAX_OUTPUT_TOKENS", 1200),
		LLMTimeout:         getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenRouterAPIKey:   os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBase:     os.Getenv("OPENROUTER_BASE_URL"),
		OpenRouterModel:    os.Getenv("OPENROUTER_MODEL"),
		OpenRouterAppTitle: getEnv("OPENROUTER_APP_TITLE", "resume-parser"),
		OpenRouterReferer:  os.Getenv("OPENROUTER_REFERER"),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 8<<20)),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}
	if cfg.DatabaseURL == "" && cfg.DatabaseDriver == DriverPostgres {
		cfg.DatabaseURL = dsnFromPGEnv()
	}
	return cfg
}

// Model returns the model identifier of the selected provider.
func (c Config) Model() string {
	if c.LLMProvider == ProviderOpenRouter {
		return c.OpenRouterModel
	}
	return c.GeminiModel
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is empty")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is empty")
		}
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	switch c.LLMProvider {
	case ProviderGemini, ProviderOpenRouter:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.LLMMaxOutputTokens <= 0 {
		return fmt.Errorf("LLM_MAX_OUTPUT_TOKENS must be positive")
	}
	return nil
}

// dsnFromPGEnv builds a postgres URL from the libpq-style PG* variables.
func dsnFromPGEnv() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(getEnv("PGUSER", "postgres"), getEnv("PGPASSWORD", "postgres")),
		Host:   getEnv("PGHOST", "localhost") + ":" + getEnv("PGPORT", "5432"),
		Path:   "/" + getEnv("PGDATABASE", "resume_db"),
	}
	q := u.Query()
	q.Set("sslmode", getEnv("PGSSLMODE", "disable"))
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
