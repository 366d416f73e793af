package lifecycle

import "log/slog"

// bestEffort runs a fallible side operation, logging a warning on
// failure instead of propagating it. Used for steps that improve the
// result but must never fail the pipeline.
func bestEffort(logger *slog.Logger, name string, fn func() error) {
	if err := fn(); err != nil {
		logger.Warn("best-effort step failed", "step", name, "error", err)
	}
}
