// Package config loads the YAML application config and the environment
// secrets it is combined with.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"sales-engine/internal/logger"
)

// Config is the parsed config.yaml.
type Config struct {
	Log logger.Config `yaml:"log"`

	Models struct {
		Hosted struct {
			Model       string  `yaml:"model"`
			BaseURL     string  `yaml:"base_url"`
			MaxTokens   int     `yaml:"max_tokens"`
			Temperature float32 `yaml:"temperature"`
		} `yaml:"hosted"`
		Local struct {
			Model          string `yaml:"model"`
			BaseURL        string `yaml:"base_url"`
			TimeoutSeconds int    `yaml:"timeout_seconds"`
		} `yaml:"local"`
	} `yaml:"models"`

	Classifier struct {
		ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	} `yaml:"classifier"`

	Engine struct {
		MaxHistoryTurns int `yaml:"max_history_turns"`
	} `yaml:"engine"`

	Redis struct {
		TTLSeconds int `yaml:"ttl_seconds"`
	} `yaml:"redis"`

	Storage struct {
		DSN string `yaml:"dsn"`
	} `yaml:"storage"`
}

// Load reads and parses config.yaml and applies defaults for absent values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Models.Hosted.MaxTokens == 0 {
		c.Models.Hosted.MaxTokens = 500
	}
	if c.Models.Local.TimeoutSeconds == 0 {
		c.Models.Local.TimeoutSeconds = 5
	}
	if c.Classifier.ConfidenceThreshold == 0 {
		c.Classifier.ConfidenceThreshold = 0.8
	}
	if c.Engine.MaxHistoryTurns == 0 {
		c.Engine.MaxHistoryTurns = 20
	}
	if c.Redis.TTLSeconds == 0 {
		c.Redis.TTLSeconds = 2400
	}
	if c.Storage.DSN == "" {
		c.Storage.DSN = "file:sales-engine.db?cache=shared"
	}
}

// LocalTimeout returns the local model timeout as a duration.
func (c *Config) LocalTimeout() time.Duration {
	return time.Duration(c.Models.Local.TimeoutSeconds) * time.Second
}

// RedisTTL returns the conversation history TTL as a duration.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}

// LoadEnv loads .env if present. A missing file is not an error.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Err(err).Msg("no .env file loaded")
	}
}
