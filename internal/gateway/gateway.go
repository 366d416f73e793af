// Package gateway provides the HTTP surface of the vault: a small REST
// API over the idea pipeline, webhook ingress for channels, a live
// event feed, health, and metrics. It binds to loopback by default.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ideavault/ideavault/internal/core"
	"github.com/ideavault/ideavault/internal/events"
	"github.com/ideavault/ideavault/internal/lifecycle"
)

func init() {
	core.RegisterModule(&Gateway{})
}

// Gateway is the HTTP gateway module. It is a leaf module; nothing
// imports it.
type Gateway struct {
	config     Config
	appCtx     *core.AppContext
	logger     *slog.Logger
	server     *http.Server
	dispatcher *WebhookDispatcher
	startedAt  time.Time

	// Resolved lazily at Start() via the service registry.
	svc *lifecycle.Service
	hub *events.Hub
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway.http",
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if node != nil {
		if err := node.Decode(&g.config); err != nil {
			return err
		}
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.appCtx = ctx
	g.logger = ctx.Logger.With("module", "gateway.http")
	g.dispatcher = NewWebhookDispatcher(g.logger)

	for source, cfg := range g.config.Webhooks {
		if cfg.Secret != "" {
			g.dispatcher.SetSecret(source, cfg.Secret)
			g.logger.Info("webhook source configured", "source", source)
		}
	}

	ctx.RegisterService("gateway.webhook_dispatcher", g.dispatcher)
	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", g.config.Bind); err != nil {
		return errors.New("gateway: invalid bind address: " + g.config.Bind)
	}
	return nil
}

// Start resolves dependencies from the service registry (lazy binding)
// and starts the HTTP server.
func (g *Gateway) Start() error {
	if svc, ok := g.appCtx.GetService("lifecycle.service"); ok {
		if s, ok := svc.(*lifecycle.Service); ok {
			g.svc = s
		}
	}
	if svc, ok := g.appCtx.GetService("events.hub"); ok {
		if h, ok := svc.(*events.Hub); ok {
			g.hub = h
		}
	}

	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Bind)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop implements core.Stopper with a graceful shutdown.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
