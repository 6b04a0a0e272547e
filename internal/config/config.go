// Package config loads binary configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/eshaffer321/campuscard-go/pkg/campuscard"
)

type Config struct {
	// Billing API
	BaseURL     string
	IDSerial    string
	ServiceHall string
	Timeout     time.Duration
	PageSize    int
	TradeType   string

	// TimezoneOffsetHours is the zone of the API's naive timestamps
	TimezoneOffsetHours int

	// RetryMax enables retries when positive; zero keeps a single exchange
	RetryMax int

	// Observability
	SentryDSN string
	LogLevel  string

	// HTTP server
	HTTPAddr string
}

// Load reads .env files (missing files are ignored) and then the environment
func Load(files ...string) *Config {
	_ = godotenv.Load(files...)

	return &Config{
		BaseURL:     getEnv("CAMPUSCARD_BASE_URL", "https://card.tsinghua.edu.cn"),
		IDSerial:    strings.TrimSpace(getEnv("CAMPUSCARD_IDSERIAL", "")),
		ServiceHall: strings.TrimSpace(getEnv("CAMPUSCARD_SERVICEHALL", "")),
		Timeout:     getEnvDuration("CAMPUSCARD_TIMEOUT", 30*time.Second),
		PageSize:    getEnvInt("CAMPUSCARD_PAGE_SIZE", 5000),
		TradeType:   getEnv("CAMPUSCARD_TRADE_TYPE", "-1"),

		TimezoneOffsetHours: getEnvInt("CAMPUSCARD_TIMEZONE_OFFSET", 8),
		RetryMax:            getEnvInt("CAMPUSCARD_RETRY_MAX", 0),

		SentryDSN: getEnv("SENTRY_DSN", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}
}

// Location returns the fixed zone for TimezoneOffsetHours
func (c *Config) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", c.TimezoneOffsetHours), c.TimezoneOffsetHours*60*60)
}

// ClientOptions builds campus card client options from the configuration
func (c *Config) ClientOptions(logger campuscard.Logger) *campuscard.ClientOptions {
	opts := &campuscard.ClientOptions{
		BaseURL:     c.BaseURL,
		Timeout:     c.Timeout,
		IDSerial:    c.IDSerial,
		ServiceHall: c.ServiceHall,
		PageSize:    c.PageSize,
		TradeType:   c.TradeType,
		Location:    c.Location(),
		Logger:      logger,
		SentryDSN:   c.SentryDSN,
	}
	if c.RetryMax > 0 {
		opts.RetryConfig = &campuscard.RetryConfig{
			MaxRetries: c.RetryMax,
			RetryWait:  time.Second,
			MaxWait:    10 * time.Second,
		}
	}
	return opts
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if parsed, err := url.Parse(c.BaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid base URL '%s': %v", c.BaseURL, err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid base URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
	}

	// The exchange must be bounded
	if c.Timeout <= 0 {
		errors = append(errors, "timeout must be positive")
	} else if c.Timeout > 2*time.Minute {
		errors = append(errors, fmt.Sprintf("timeout %s is too long: must be at most 2m", c.Timeout))
	}

	if c.PageSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid page size %d: must be positive", c.PageSize))
	}

	if c.TimezoneOffsetHours < -12 || c.TimezoneOffsetHours > 14 {
		errors = append(errors, fmt.Sprintf("invalid timezone offset %d: must be between -12 and 14", c.TimezoneOffsetHours))
	}

	if c.RetryMax < 0 {
		errors = append(errors, "retry max must not be negative")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// RequireCredentials reports missing identity settings
func (c *Config) RequireCredentials() error {
	var missing []string
	if c.IDSerial == "" {
		missing = append(missing, "CAMPUSCARD_IDSERIAL")
	}
	if c.ServiceHall == "" {
		missing = append(missing, "CAMPUSCARD_SERVICEHALL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
