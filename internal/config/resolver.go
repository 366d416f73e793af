package config

import "sort"

// Resolve returns module IDs from the configuration in deterministic
// (sorted) order. Load order does not carry semantics; services are
// registered during provisioning and looked up lazily.
func (c *Config) Resolve() []string {
	ids := make([]string, 0, len(c.Modules))
	for id := range c.Modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
