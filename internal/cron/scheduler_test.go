package cron

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// stubJob stands in for a maintenance job in scheduler tests.
type stubJob struct {
	name     string
	schedule string
	runFunc  func(ctx context.Context) error
	runs     atomic.Int32
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }
func (j *stubJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.runFunc != nil {
		return j.runFunc(ctx)
	}
	return nil
}

func TestSchedulerRejectsDuplicateJobName(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.Default())
	if err := s.RegisterJob(&stubJob{name: "cost_reset", schedule: "0 0 * * *"}); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if err := s.RegisterJob(&stubJob{name: "cost_reset", schedule: "0 12 * * *"}); err == nil {
		t.Fatal("duplicate job name accepted")
	}
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.Default())
	_ = s.RegisterJob(&stubJob{name: "stats_snapshot", schedule: "whenever"})

	if err := s.Start(); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.Default())
	_ = s.RegisterJob(&stubJob{name: "cost_reset", schedule: "0 0 * * *"})
	_ = s.RegisterJob(&stubJob{name: "stats_snapshot", schedule: "0 8 * * *"})

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestSchedulerNilLoggerDefaults(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil)
	if s.logger == nil {
		t.Fatal("logger not defaulted")
	}
}

func TestSchedulerSkipsTickWhileRunning(t *testing.T) {
	t.Parallel()

	var concurrent atomic.Int32
	var peak atomic.Int32

	job := &stubJob{
		name:     "stats_snapshot",
		schedule: "* * * * *",
		runFunc: func(_ context.Context) error {
			c := concurrent.Add(1)
			for {
				old := peak.Load()
				if c <= old || peak.CompareAndSwap(old, c) {
					break
				}
			}
			time.Sleep(50 * time.Millisecond)
			concurrent.Add(-1)
			return nil
		},
	}

	s := NewScheduler(slog.Default())
	_ = s.RegisterJob(job)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Fire the tick by hand from several goroutines; only one run may
	// be active at a time, the rest are skipped.
	tick := s.tick(context.Background(), s.entries["stats_snapshot"])
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tick()
		}()
	}
	wg.Wait()

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if peak.Load() > 1 {
		t.Errorf("peak concurrency = %d, want <= 1", peak.Load())
	}
	if job.runs.Load() == 0 {
		t.Error("job never ran")
	}
}

func TestSchedulerSurvivesJobError(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.Default())
	job := &stubJob{
		name:     "cost_reset",
		schedule: "* * * * *",
		runFunc: func(_ context.Context) error {
			return errors.New("ledger unavailable")
		},
	}
	_ = s.RegisterJob(job)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.tick(context.Background(), s.entries["cost_reset"])()
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if job.runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", job.runs.Load())
	}
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.Default())
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
