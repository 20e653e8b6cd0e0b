// Package config loads the server settings from the environment, reading a
// .env file first when one exists.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel logrus.Level
	Store    string

	DBHost string
	DBUser string
	DBPass string
	DBName string
	DBPort string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTExpiry time.Duration

	AIBaseURL         string
	AIAPIKey          string
	AIModel           string
	AITranscribeModel string
	AITimeout         time.Duration

	DailyResolutionQuota int
	RateLimitMax         int
	RateLimitWindow      time.Duration
}

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	devJWTSecret = "your-secret-key"
)

// Load reads .env (a missing file is fine) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using system environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, filling defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	var errs []error
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}
	getInt := func(key string, def int) int {
		raw := get(key, "")
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return n
	}
	getDuration := func(key string, def time.Duration) time.Duration {
		raw := get(key, "")
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return d
	}

	cfg := &Config{
		Port:   get("PORT", "8080"),
		AppEnv: get("APP_ENV", "development"),
		Store:  strings.ToLower(get("STORE", StorePostgres)),

		DBHost: get("DB_HOST", "localhost"),
		DBUser: get("DB_USER", "postgres"),
		DBPass: get("DB_PASS", "postgres"),
		DBName: get("DB_NAME", "fairmind"),
		DBPort: get("DB_PORT", "5432"),

		RedisAddr:     get("REDIS_ADDR", ""),
		RedisPassword: get("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),

		JWTSecret: get("JWT_SECRET", ""),
		JWTExpiry: time.Duration(getInt("JWT_EXPIRY_HOURS", 24*7)) * time.Hour,

		AIBaseURL:         strings.TrimRight(get("AI_BASE_URL", "https://api.openai.com"), "/"),
		AIAPIKey:          get("AI_API_KEY", ""),
		AIModel:           get("AI_MODEL", "gpt-4o-mini"),
		AITranscribeModel: get("AI_TRANSCRIBE_MODEL", "whisper-1"),
		AITimeout:         getDuration("AI_TIMEOUT", 60*time.Second),

		DailyResolutionQuota: getInt("DAILY_RESOLUTION_QUOTA", 5),
		RateLimitMax:         getInt("RATE_LIMIT_MAX", 120),
		RateLimitWindow:      getDuration("RATE_LIMIT_WINDOW", time.Minute),
	}

	level, err := logrus.ParseLevel(get("LOG_LEVEL", "info"))
	if err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
		level = logrus.InfoLevel
	}
	cfg.LogLevel = level

	if cfg.Store != StorePostgres && cfg.Store != StoreMemory {
		errs = append(errs, fmt.Errorf("STORE: unknown store %q", cfg.Store))
	}
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET must be set in production"))
		}
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.DailyResolutionQuota < 0 {
		errs = append(errs, errors.New("DAILY_RESOLUTION_QUOTA cannot be negative"))
	}
	if cfg.RateLimitMax > 0 && cfg.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if cfg.AITimeout <= 0 {
		errs = append(errs, errors.New("AI_TIMEOUT must be positive"))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DSN is the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort)
}

// SetupLogger applies the level and picks the formatter for the environment.
func (c *Config) SetupLogger(logger *logrus.Logger) {
	logger.SetLevel(c.LogLevel)
	if c.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
