// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for ideavault.
package config

import "gopkg.in/yaml.v3"

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "channel.telegram").
	Modules map[string]yaml.Node `yaml:"modules"`

	// Bot holds the Telegram conversation settings consumed during wiring
	// (flow policy, admin users). It is not a module of its own.
	Bot BotConfig `yaml:"bot,omitempty"`

	// Jobs holds cron schedules for maintenance jobs.
	Jobs JobsConfig `yaml:"jobs,omitempty"`
}

// BotConfig controls the idea conversation flow.
type BotConfig struct {
	// SkipClarification switches the bot to the direct flow: every captured
	// idea is confirmed and enriched immediately, without asking a clarifying
	// question first.
	SkipClarification bool `yaml:"skip_clarification"`

	// AdminUsers lists Telegram user IDs allowed to run /stats.
	AdminUsers []string `yaml:"admin_users,omitempty"`
}

// JobsConfig holds cron expressions for scheduled maintenance.
type JobsConfig struct {
	// CostReset is the cron schedule for zeroing the cost ledger.
	// Empty disables the job. Standard 5-field cron syntax.
	CostReset string `yaml:"cost_reset,omitempty"`
}
