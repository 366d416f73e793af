package notion

import (
	"fmt"
	"time"
)

// Config holds the storage.notion module configuration.
type Config struct {
	// Token is the Notion integration token. Required.
	Token string `yaml:"token"`

	// DatabaseID is the target database for idea pages. Required.
	DatabaseID string `yaml:"database_id"`

	// BaseURL overrides the API endpoint. Defaults to the public Notion API.
	BaseURL string `yaml:"base_url"`

	// Version is the Notion-Version header value.
	Version string `yaml:"version"`

	// Timeout is the HTTP request timeout as a duration string. Defaults to "30s".
	Timeout string `yaml:"timeout"`
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.notion.com/v1"
	}
	if c.Version == "" {
		c.Version = "2022-06-28"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
}

func (c *Config) parsedTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("notion: invalid timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}

func (c *Config) validateTimeout() error {
	d, err := c.parsedTimeout()
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("notion: timeout must be positive, got %q", c.Timeout)
	}
	return nil
}
