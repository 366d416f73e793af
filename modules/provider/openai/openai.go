// Package openai implements the provider.openai module: chat completions
// and Whisper transcription against the OpenAI HTTP API.
package openai

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/ideavault/ideavault/internal/core"
	"github.com/ideavault/ideavault/internal/provider"
)

func init() {
	core.RegisterModule(Provider{})
}

// Provider talks to the OpenAI API for completions and audio transcription.
type Provider struct {
	config Config
	logger *slog.Logger
	client *http.Client
}

// ModuleInfo implements core.Module.
func (Provider) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID: "provider.openai",
		New: func() core.Module {
			return &Provider{}
		},
	}
}

// Configure implements core.Configurable.
func (p *Provider) Configure(node *yaml.Node) error {
	p.config = Config{}
	if node != nil {
		if err := node.Decode(&p.config); err != nil {
			return fmt.Errorf("decode config: %w", err)
		}
	}
	p.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (p *Provider) Provision(appCtx *core.AppContext) error {
	p.logger = appCtx.Logger.With("module", "provider.openai")

	timeout, err := p.config.parsedTimeout()
	if err != nil {
		return err
	}
	p.client = &http.Client{Timeout: timeout}

	appCtx.RegisterService("provider.openai", p)
	return nil
}

// Validate implements core.Validator.
func (p *Provider) Validate() error {
	if p.config.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	if p.config.Model == "" {
		return fmt.Errorf("model is required")
	}
	return p.config.validateTimeout()
}

// Start implements core.App lifecycle.
func (p *Provider) Start() error {
	p.logger.Info("provider ready", "model", p.config.Model, "transcribe_model", p.config.TranscribeModel)
	return nil
}

// Stop implements core.App lifecycle.
func (p *Provider) Stop(ctx context.Context) error {
	p.client.CloseIdleConnections()
	return nil
}

// ModelName implements provider.Completer.
func (p *Provider) ModelName() string {
	return p.config.Model
}

// HealthCheck performs a lightweight call to verify credentials and reachability.
func (p *Provider) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.BaseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return mapConnectionError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		return mapHTTPError(resp.StatusCode, body)
	}
	return nil
}

// Interface guards.
var (
	_ core.Module          = (*Provider)(nil)
	_ core.Configurable    = (*Provider)(nil)
	_ core.Provisioner     = (*Provider)(nil)
	_ core.Validator       = (*Provider)(nil)
	_ provider.Completer   = (*Provider)(nil)
	_ provider.Transcriber = (*Provider)(nil)
)
