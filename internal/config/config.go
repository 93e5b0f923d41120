package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Console / client side
	APIBaseURL        string
	SessionFile       string
	MaxUploadSize     int64
	PageSize          int
	UploadConcurrency int
	RequestTimeout    time.Duration

	// Dev server side
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	JWTSecret          string
	TokenTTL           time.Duration
	CORSOrigins        []string
	RateLimitRPM       int
	DatabaseURL        string
	DBMaxConns         int
	DBMinConns         int
}

const defaultMaxUploadSize = 200 << 20 // 200 MiB

// devSecret signs the locally fabricated session tokens. It is not a
// secret; the whole credential model is a demo placeholder.
const devSecret = "fileconsole-dev-secret"

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:8080/api"),
		SessionFile:        getEnv("SESSION_FILE", defaultSessionFile()),
		MaxUploadSize:      getInt64("MAX_UPLOAD_SIZE", defaultMaxUploadSize),
		PageSize:           getInt("PAGE_SIZE", 10),
		UploadConcurrency:  getInt("UPLOAD_CONCURRENCY", 0),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 0),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		ServerReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		JWTSecret:          getEnv("JWT_SECRET", devSecret),
		TokenTTL:           getDuration("TOKEN_TTL", 24*time.Hour),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:       getInt("RATE_LIMIT_RPM", 600),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:         getInt("DB_MAX_CONNS", 8),
		DBMinConns:         getInt("DB_MIN_CONNS", 1),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("API_BASE_URL cannot be empty")
	}

	if strings.TrimSpace(c.SessionFile) == "" {
		return fmt.Errorf("SESSION_FILE cannot be empty")
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}

	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive")
	}

	if c.UploadConcurrency < 0 {
		return fmt.Errorf("UPLOAD_CONCURRENCY cannot be negative")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}

	return nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./session.json"
	}
	return filepath.Join(home, ".fileconsole", "session.json")
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
