package classifier

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the OpenAI classifier configuration.
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Logger      *logrus.Logger
}

// NewConfig builds a classifier config from environment variables.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		APIKey:      os.Getenv("OPENAI_API_KEY"),
		Model:       os.Getenv("OPENAI_MODEL"),
		Temperature: 0.1,
		MaxTokens:   150,
		Timeout:     30 * time.Second,
		Logger:      logrus.New(),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks required fields and fills defaults.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.1
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 150
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}
