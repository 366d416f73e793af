package config

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/ideavault/ideavault/internal/core"
)

// Validate checks structural correctness of the configuration: version,
// presence of modules, and that every referenced module is registered.
func (c *Config) Validate() error {
	var errs []error

	if c.Version == "" {
		errs = append(errs, errors.New("config: version is required"))
	} else if c.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (expected \"1\")", c.Version))
	}

	if len(c.Modules) == 0 {
		errs = append(errs, errors.New("config: at least one module must be configured"))
	}

	for id := range c.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
		}
	}

	if c.Jobs.CostReset != "" {
		if _, err := cron.ParseStandard(c.Jobs.CostReset); err != nil {
			errs = append(errs, fmt.Errorf("config: jobs.cost_reset: %w", err))
		}
	}

	return errors.Join(errs...)
}
