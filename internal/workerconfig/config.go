package workerconfig

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "MODERATION_WORKER_CONFIG"

// Config holds worker-level tuning loaded from YAML with env overrides.
type Config struct {
	PollInterval      time.Duration
	BatchSize         int
	VisibilityTimeout time.Duration
	SlackWebhookURL   string
}

// UnmarshalYAML decodes durations from strings like "10s" or "5m".
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var aux struct {
		PollInterval      string `yaml:"pollInterval"`
		BatchSize         int    `yaml:"batchSize"`
		VisibilityTimeout string `yaml:"visibilityTimeout"`
		SlackWebhookURL   string `yaml:"slackWebhookUrl"`
	}

	if err := value.Decode(&aux); err != nil {
		return err
	}

	if aux.PollInterval != "" {
		d, err := time.ParseDuration(aux.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid pollInterval: %w", err)
		}
		c.PollInterval = d
	}
	if aux.VisibilityTimeout != "" {
		d, err := time.ParseDuration(aux.VisibilityTimeout)
		if err != nil {
			return fmt.Errorf("invalid visibilityTimeout: %w", err)
		}
		c.VisibilityTimeout = d
	}

	c.BatchSize = aux.BatchSize
	c.SlackWebhookURL = aux.SlackWebhookURL
	return nil
}

func defaultConfig() Config {
	return Config{
		PollInterval:      10 * time.Second,
		BatchSize:         10,
		VisibilityTimeout: 5 * time.Minute,
	}
}

// Load reads the YAML config file named by MODERATION_WORKER_CONFIG (if
// set) and applies environment overrides. Missing or malformed files fall
// back to defaults.
func Load(logger *logrus.Logger) Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			logger.WithError(err).WithField("path", path).
				Warn("Cannot read worker config, falling back to defaults")
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				logger.WithError(err).WithField("path", path).
					Warn("Cannot parse worker config, falling back to defaults")
			} else {
				cfg = merge(cfg, fileCfg)
			}
		}
	}

	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.SlackWebhookURL = v
	}

	return cfg
}

func merge(base, override Config) Config {
	if override.PollInterval > 0 {
		base.PollInterval = override.PollInterval
	}
	if override.BatchSize > 0 {
		base.BatchSize = override.BatchSize
	}
	if override.VisibilityTimeout > 0 {
		base.VisibilityTimeout = override.VisibilityTimeout
	}
	if override.SlackWebhookURL != "" {
		base.SlackWebhookURL = override.SlackWebhookURL
	}
	return base
}
