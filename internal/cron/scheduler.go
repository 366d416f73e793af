package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// entry pairs a maintenance job with its run lock. TryLock on the lock
// skips a tick when the previous run is still in flight.
type entry struct {
	job     Job
	running sync.Mutex
}

// Scheduler runs the vault's maintenance jobs (cost-ledger reset,
// stats snapshots) on standard five-field cron schedules.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]*entry
	order   []string
	logger  *slog.Logger
	cancel  context.CancelFunc
}

// NewScheduler creates an empty scheduler. Register jobs before Start.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// RegisterJob adds a job. Job names must be unique; registration after
// Start has no effect on the running schedule.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("cron: duplicate job name %q", name)
	}
	s.entries[name] = &entry{job: j}
	s.order = append(s.order, name)
	return nil
}

// Start validates every schedule and begins ticking. The context
// passed to job Run calls is cancelled by Stop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.cron = cron.New()

	for _, name := range s.order {
		e := s.entries[name]
		if _, err := s.cron.AddFunc(e.job.Schedule(), s.tick(ctx, e)); err != nil {
			cancel()
			return fmt.Errorf("cron: schedule for job %q: %w", name, err)
		}
	}

	s.cron.Start()
	s.logger.Info("maintenance scheduler started", "jobs", len(s.order))
	return nil
}

func (s *Scheduler) tick(ctx context.Context, e *entry) func() {
	name := e.job.Name()
	return func() {
		if !e.running.TryLock() {
			s.logger.Warn("maintenance job still running, tick skipped", "job", name)
			return
		}
		defer e.running.Unlock()

		if err := e.job.Run(ctx); err != nil {
			s.logger.Error("maintenance job failed", "job", name, "error", err)
			return
		}
		s.logger.Debug("maintenance job finished", "job", name)
	}
}

// Stop cancels the job context and waits for in-flight runs.
func (s *Scheduler) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.logger.Info("maintenance scheduler stopped")
	}
	return nil
}
