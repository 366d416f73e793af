package cron

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ideavault/ideavault/internal/idea"
)

// CostResetter is the subset of the lifecycle service needed by the
// cost reset job. Defined here to avoid a circular dependency.
type CostResetter interface {
	ResetCosts()
}

// CostResetJob zeroes the AI spend ledger on a schedule, typically
// daily at midnight.
type CostResetJob struct {
	Service      CostResetter
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "0 0 * * *"
}

// Compile-time interface check.
var _ Job = (*CostResetJob)(nil)

// Name implements Job.
func (j *CostResetJob) Name() string { return "cost_reset" }

// Schedule implements Job.
func (j *CostResetJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 0 * * *"
}

// Run resets the cost ledger.
func (j *CostResetJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: cost reset cancelled: %w", ctx.Err())
	}
	j.Service.ResetCosts()
	return nil
}

// StatsSource is the subset of the storage layer needed by the stats
// snapshot job.
type StatsSource interface {
	Stats(ctx context.Context) (*idea.Stats, error)
}

// StatsSnapshotJob logs a periodic summary of the vault so long-running
// deployments leave a paper trail of growth in the logs.
type StatsSnapshotJob struct {
	Store        StatsSource
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "0 8 * * *"
}

// Compile-time interface check.
var _ Job = (*StatsSnapshotJob)(nil)

// Name implements Job.
func (j *StatsSnapshotJob) Name() string { return "stats_snapshot" }

// Schedule implements Job.
func (j *StatsSnapshotJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 8 * * *"
}

// Run logs the current idea counts.
func (j *StatsSnapshotJob) Run(ctx context.Context) error {
	stats, err := j.Store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("cron: stats snapshot: %w", err)
	}
	j.Logger.Info("cron: vault snapshot",
		"total", stats.Total,
		"enriched", stats.ByStatus[idea.StatusEnriched],
		"awaiting_clarification", stats.ByStatus[idea.StatusAwaitingClarification],
	)
	return nil
}
