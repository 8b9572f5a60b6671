// Package config loads process settings from the environment, reading a
// .env file first when one is present.
package config

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Postgres PostgresConfig

	HTTPAddr       string
	JWTSecret      string
	CORSOrigins    []string
	CookieDomain   string
	CookieSameSite http.SameSite

	LogLevel  slog.Level
	LogFormat string

	CacheTTL         time.Duration
	AuditConcurrency int
	VoteRateLimit    float64
	VoteRateBurst    int

	AdminUsername string
	AdminPassword string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
}

// DSN is the lib/pq connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.DB)
}

// Load reads .env if present and then the process environment. Unset values
// fall back to development defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Postgres: PostgresConfig{
			Host:     getenv("POSTGRES_HOST", "localhost"),
			Port:     getenv("POSTGRES_PORT", "5432"),
			User:     getenv("POSTGRES_USER", "postgres"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DB:       getenv("POSTGRES_DB", "ballot"),
		},
		HTTPAddr:      getenv("HTTP_ADDR", "0.0.0.0:8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS", "*")),
		CookieDomain:  os.Getenv("COOKIE_DOMAIN"),
		LogFormat:     getenv("LOG_FORMAT", "json"),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	var err error
	if err = cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if cfg.CookieSameSite, err = parseSameSite(getenv("COOKIE_SAMESITE", "lax")); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = time.ParseDuration(getenv("CACHE_TTL", "30s")); err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	if cfg.AuditConcurrency, err = strconv.Atoi(getenv("AUDIT_CONCURRENCY", "8")); err != nil {
		return nil, fmt.Errorf("invalid AUDIT_CONCURRENCY: %w", err)
	}
	if cfg.VoteRateLimit, err = strconv.ParseFloat(getenv("VOTE_RATE_LIMIT", "1"), 64); err != nil {
		return nil, fmt.Errorf("invalid VOTE_RATE_LIMIT: %w", err)
	}
	if cfg.VoteRateBurst, err = strconv.Atoi(getenv("VOTE_RATE_BURST", "5")); err != nil {
		return nil, fmt.Errorf("invalid VOTE_RATE_BURST: %w", err)
	}

	return cfg, nil
}

// NewLogger builds the process logger for the configured format and level.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func parseSameSite(v string) (http.SameSite, error) {
	switch strings.ToLower(v) {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	}
	return 0, fmt.Errorf("invalid COOKIE_SAMESITE: %q", v)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
