package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application settings.
type Config struct {
	// DatabaseURL may be empty: the server then starts without a store and answers 503 on data routes.
	DatabaseURL        string
	ServerPort         int
	LogLevel           slog.Level
	CORSAllowedOrigins []string

	JWTSecretKey       string
	RequireUmpireToken bool
	MatchCodeTTL       time.Duration

	DeclashStrategy string

	RedisURL string
	CacheTTL time.Duration

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	CodePurgeSchedule string
}

func (c *Config) DatabaseConfigured() bool {
	return c.DatabaseURL != ""
}

func (c *Config) R2Configured() bool {
	return c.R2AccountID != ""
}

// Load reads the configuration from the environment, after loading an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecretKey:       os.Getenv("JWT_SECRET_KEY"),
		DeclashStrategy:    strings.TrimSpace(os.Getenv("DECLASH_STRATEGY")),
		RedisURL:           strings.TrimSpace(os.Getenv("REDIS_URL")),
		R2AccountID:        os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:      os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:  os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:    os.Getenv("R2_PUBLIC_BASE_URL"),
		CodePurgeSchedule:  getEnv("CODE_PURGE_SCHEDULE", "@every 1h"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	var err error
	if cfg.ServerPort, err = getEnvInt("SERVER_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if cfg.RequireUmpireToken, err = getEnvBool("REQUIRE_UMPIRE_TOKEN", false); err != nil {
		return nil, err
	}
	if cfg.RequireUmpireToken && cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set but REQUIRE_UMPIRE_TOKEN is true")
	}

	if cfg.MatchCodeTTL, err = getEnvDuration("MATCH_CODE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.MatchCodeTTL <= 0 {
		return nil, fmt.Errorf("MATCH_CODE_TTL must be positive, got %s", cfg.MatchCodeTTL)
	}
	if cfg.CacheTTL, err = getEnvDuration("CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL < 0 {
		return nil, fmt.Errorf("CACHE_TTL must not be negative, got %s", cfg.CacheTTL)
	}

	switch strings.ToLower(cfg.DeclashStrategy) {
	case "", "grouped", "balanced":
	default:
		return nil, fmt.Errorf("DECLASH_STRATEGY must be 'grouped' or 'balanced', got %q", cfg.DeclashStrategy)
	}

	r2 := []string{cfg.R2AccountID, cfg.R2AccessKeyID, cfg.R2SecretAccessKey, cfg.R2BucketName, cfg.R2PublicBaseURL}
	set := 0
	for _, v := range r2 {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != len(r2) {
		return nil, fmt.Errorf("R2 settings are incomplete: set all of R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME, R2_PUBLIC_BASE_URL or none")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
