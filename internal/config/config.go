package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Services holds the external-service endpoints and credentials loaded
// from a YAML file. Keys live in a file rather than flags so they stay
// out of process listings.
type Services struct {
	Generation GenerationConfig `yaml:"generation"`
	Image      ImageConfig      `yaml:"image"`
	Push       PushConfig       `yaml:"push"`
}

// GenerationConfig configures the generative-text service.
type GenerationConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"api_key"`
	Model       string `yaml:"model"`
	MaxAttempts int    `yaml:"max_attempts"`
}

// ImageConfig configures the image-generation service.
type ImageConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// PushConfig configures the push-notification service.
type PushConfig struct {
	BaseURL   string `yaml:"base_url"`
	ServerKey string `yaml:"server_key"`
}

// LoadServices reads and parses the services file at path.
func LoadServices(path string) (*Services, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read services config: %w", err)
	}

	var cfg Services
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse services config %s: %w", path, err)
	}

	return &cfg, nil
}
