package openai

import (
	"fmt"
	"time"
)

// Config holds the provider.openai module configuration.
type Config struct {
	// APIKey is the OpenAI API key. Required.
	APIKey string `yaml:"api_key"`

	// Model is the chat model identifier (e.g. "gpt-4o-mini"). Required.
	Model string `yaml:"model"`

	// TranscribeModel is the audio transcription model. Defaults to "whisper-1".
	TranscribeModel string `yaml:"transcribe_model"`

	// BaseURL overrides the API endpoint. Defaults to the public OpenAI API.
	BaseURL string `yaml:"base_url"`

	// MaxTokens caps completion length when the caller does not set one.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature is the default sampling temperature.
	Temperature *float64 `yaml:"temperature"`

	// Timeout is the HTTP request timeout as a duration string. Defaults to "60s".
	Timeout string `yaml:"timeout"`
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.TranscribeModel == "" {
		c.TranscribeModel = "whisper-1"
	}
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
}

func (c *Config) parsedTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}

func (c *Config) validateTimeout() error {
	d, err := c.parsedTimeout()
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive, got %q", c.Timeout)
	}
	return nil
}
