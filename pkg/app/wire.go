package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ideavault/ideavault/internal/bot"
	"github.com/ideavault/ideavault/internal/channel"
	"github.com/ideavault/ideavault/internal/config"
	"github.com/ideavault/ideavault/internal/core"
	"github.com/ideavault/ideavault/internal/costs"
	"github.com/ideavault/ideavault/internal/cron"
	"github.com/ideavault/ideavault/internal/events"
	"github.com/ideavault/ideavault/internal/lifecycle"
	"github.com/ideavault/ideavault/internal/provider"
	"github.com/ideavault/ideavault/internal/storage"
)

// wiring holds the programmatically built components that outlive the
// wire step.
type wiring struct {
	svc *lifecycle.Service
	hub *events.Hub
}

// schedulerModule wraps a *cron.Scheduler to satisfy core.Module,
// core.Starter, and core.Stopper, so the scheduler participates in the
// App lifecycle.
type schedulerModule struct {
	sched *cron.Scheduler
}

func (m *schedulerModule) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: "cron"}
}

func (m *schedulerModule) Start() error {
	return m.sched.Start()
}

func (m *schedulerModule) Stop(ctx context.Context) error {
	return m.sched.Stop(ctx)
}

// wireVault builds the lifecycle service from the services registered
// by loaded modules, hooks the bot to the channel inbox, and schedules
// maintenance jobs. Must be called after LoadModules and before Start.
func wireVault(
	application *core.App,
	appCtx *core.AppContext,
	cfg *config.Config,
	logger *slog.Logger,
) (*wiring, error) {
	// Discover the storage adapter. Exactly one storage module
	// (storage.sqlite or storage.notion) registers this service.
	rawStore, ok := appCtx.GetService("storage.store")
	if !ok {
		return nil, fmt.Errorf("wire: no storage module configured (add storage.sqlite or storage.notion)")
	}
	store, ok := rawStore.(storage.Store)
	if !ok {
		return nil, fmt.Errorf("wire: storage.store service has unexpected type %T", rawStore)
	}

	rawProvider, ok := appCtx.GetService("provider.openai")
	if !ok {
		return nil, fmt.Errorf("wire: provider.openai module is required")
	}
	completer, ok := rawProvider.(provider.Completer)
	if !ok {
		return nil, fmt.Errorf("wire: provider service has unexpected type %T", rawProvider)
	}
	transcriber, _ := rawProvider.(provider.Transcriber)

	// The downloader only exists when the Telegram channel is loaded.
	// Without it voice and file submissions from other surfaces carry
	// URLs the pipeline fetches lazily, so nil is fine.
	var downloader provider.Downloader
	if rawDl, ok := appCtx.GetService("telegram.downloader"); ok {
		downloader, _ = rawDl.(provider.Downloader)
	}

	hub := events.NewHub()
	ledger := costs.NewLedger()

	svc := lifecycle.NewService(store, completer, transcriber, downloader, ledger, hub, logger,
		lifecycle.Options{SkipClarification: cfg.Bot.SkipClarification})

	// Register before Start so the gateway can resolve them.
	appCtx.RegisterService("lifecycle.service", svc)
	appCtx.RegisterService("events.hub", hub)

	// Hook the bot to every loaded channel.
	channels := 0
	for _, id := range cfg.Resolve() {
		mod, ok := application.Module(id)
		if !ok {
			continue
		}
		ch, ok := mod.(channel.Channel)
		if !ok {
			continue
		}
		allow := channel.NewAllowList(nil, nil, cfg.Bot.AdminUsers)
		b := bot.New(svc, ch, allow, logger)
		ch.SetInbox(b.HandleMessage)
		channels++
		logger.Info("wire: bot hooked to channel", "channel", id)
	}
	if channels == 0 {
		logger.Info("wire: no channels loaded, bot disabled")
	}

	// Maintenance jobs.
	sched := cron.NewScheduler(logger)
	if err := sched.RegisterJob(&cron.StatsSnapshotJob{Store: store, Logger: logger}); err != nil {
		return nil, err
	}
	if cfg.Jobs.CostReset != "" {
		job := &cron.CostResetJob{Service: svc, Logger: logger, ScheduleExpr: cfg.Jobs.CostReset}
		if err := sched.RegisterJob(job); err != nil {
			return nil, err
		}
	}
	application.AppendModule("cron", &schedulerModule{sched: sched})

	return &wiring{svc: svc, hub: hub}, nil
}
