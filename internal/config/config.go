package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vytor/studyspace/internal/timezone"
)

type Config struct {
	Addr                string
	DBPath              string
	LogLevel            string
	LogFormat           string
	DefaultTimezone     string
	FirstReviewHour     int
	SessionTTLHours     int
	BcryptCost          int
	CalendarWorkerCount int
	CalendarQueueSize   int
	CalendarURL         string
	RateLimitRPS        float64
	RateLimitBurst      int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                envOr("ADDR", ":8080"),
		DBPath:              envOr("DB_PATH", "file:studyspace.db"),
		LogLevel:            envOr("LOG_LEVEL", "INFO"),
		LogFormat:           envOr("LOG_FORMAT", "text"),
		DefaultTimezone:     envOr("DEFAULT_TIMEZONE", timezone.DefaultZone),
		FirstReviewHour:     envIntOr("FIRST_REVIEW_HOUR", 9),
		SessionTTLHours:     envIntOr("SESSION_TTL_HOURS", 48),
		BcryptCost:          envIntOr("BCRYPT_COST", 9),
		CalendarWorkerCount: envIntOr("CALENDAR_WORKER_COUNT", 2),
		CalendarQueueSize:   envIntOr("CALENDAR_QUEUE_SIZE", 64),
		CalendarURL:         os.Getenv("CALENDAR_URL"),
		RateLimitRPS:        envFloatOr("RATE_LIMIT_RPS", 10),
		RateLimitBurst:      envIntOr("RATE_LIMIT_BURST", 20),
	}
}

// Validate returns the first configuration problem found, if any.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if !timezone.IsValid(c.DefaultTimezone) {
		return fmt.Errorf("DEFAULT_TIMEZONE %q is not a valid IANA timezone", c.DefaultTimezone)
	}
	if c.FirstReviewHour < 0 || c.FirstReviewHour > 23 {
		return fmt.Errorf("FIRST_REVIEW_HOUR must be between 0 and 23, got %d", c.FirstReviewHour)
	}
	if c.SessionTTLHours < 1 {
		return fmt.Errorf("SESSION_TTL_HOURS must be at least 1, got %d", c.SessionTTLHours)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.CalendarWorkerCount < 1 {
		return fmt.Errorf("CALENDAR_WORKER_COUNT must be at least 1, got %d", c.CalendarWorkerCount)
	}
	if c.CalendarQueueSize < 1 {
		return fmt.Errorf("CALENDAR_QUEUE_SIZE must be at least 1, got %d", c.CalendarQueueSize)
	}
	if c.CalendarURL != "" && !strings.HasPrefix(c.CalendarURL, "http://") && !strings.HasPrefix(c.CalendarURL, "https://") {
		return fmt.Errorf("CALENDAR_URL must be an http(s) URL, got %q", c.CalendarURL)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %v", c.RateLimitRPS)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimitBurst)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}
