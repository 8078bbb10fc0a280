package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is required")
)

type Config struct {
	DatabaseURL string
	JWTSecret   string
	Port        string

	UploadDir       string
	UploadURLPrefix string

	CookieSecure       bool
	CORSAllowedOrigins []string

	MetricsUser     string
	MetricsPassword string

	LogLevel       string
	DBPingInterval time.Duration
}

// Load reads .env (if any) and the environment. The database URL and the
// token secret have no built-in fallback: a missing value is an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabaseURL:        getenv("DATABASE_URL"),
		JWTSecret:          getenv("JWT_SECRET"),
		Port:               withDefault(getenv("PORT"), "8080"),
		UploadDir:          withDefault(getenv("UPLOAD_DIR"), "public/images"),
		UploadURLPrefix:    withDefault(getenv("UPLOAD_URL_PREFIX"), "/images"),
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS")),
		MetricsUser:        getenv("METRICS_USER"),
		MetricsPassword:    getenv("METRICS_PASSWORD"),
		LogLevel:           withDefault(getenv("LOG_LEVEL"), "info"),
		DBPingInterval:     30 * time.Second,
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	if v := getenv("COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		cfg.CookieSecure = secure
	}

	if v := getenv("DB_PING_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("DB_PING_INTERVAL: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("DB_PING_INTERVAL must be positive, got %s", v)
		}
		cfg.DBPingInterval = d
	}

	return cfg, nil
}

// MetricsEnabled reports whether /metrics should be mounted.
func (c *Config) MetricsEnabled() bool {
	return c.MetricsUser != "" && c.MetricsPassword != ""
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
