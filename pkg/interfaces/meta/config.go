package meta

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds Meta Graph API client configuration.
type Config struct {
	// API Authentication
	AccessToken string

	// API Endpoints
	BaseURL string

	// Rate Limiting
	RateLimit  int
	RateWindow time.Duration

	// Request bounds
	RequestTimeout time.Duration

	Logger *logrus.Logger
}

// NewConfig builds a Meta client config from environment variables.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	rateLimit, _ := strconv.Atoi(getEnvOrDefault("META_RATE_LIMIT", "200"))
	rateWindowMinutes, _ := strconv.Atoi(getEnvOrDefault("META_RATE_WINDOW_MINUTES", "60"))

	config := &Config{
		AccessToken:    os.Getenv("META_ACCESS_TOKEN"),
		BaseURL:        getEnvOrDefault("META_API_BASE_URL", "https://graph.facebook.com/v23.0"),
		RateLimit:      rateLimit,
		RateWindow:     time.Duration(rateWindowMinutes) * time.Minute,
		RequestTimeout: 30 * time.Second,
		Logger:         logrus.New(),
	}

	config.Logger.WithFields(logrus.Fields{
		"access_token_exists": config.AccessToken != "",
		"base_url":            config.BaseURL,
		"rate_limit":          config.RateLimit,
	}).Debug("Meta config initialized")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks required fields and fills defaults.
func (c *Config) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("META_ACCESS_TOKEN is required")
	}
	if c.RateLimit < 1 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.RateWindow <= 0 {
		return fmt.Errorf("rate window must be positive")
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://graph.facebook.com/v23.0"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
