// Package tracing implements the observability.tracing module: an OTel
// tracer provider exporting spans over OTLP/HTTP. When the module is
// absent traces fall back to the otel no-op provider, so instrumented
// code never needs to care whether tracing is on.
package tracing

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"gopkg.in/yaml.v3"

	"github.com/ideavault/ideavault/internal/core"
)

func init() {
	core.RegisterModule(Module{})
}

// Module installs a global OTLP tracer provider for the process.
type Module struct {
	config   Config
	logger   *slog.Logger
	provider *sdktrace.TracerProvider
}

// ModuleInfo implements core.Module.
func (Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID: "observability.tracing",
		New: func() core.Module {
			return &Module{}
		},
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	m.config = Config{}
	if node != nil {
		if err := node.Decode(&m.config); err != nil {
			return fmt.Errorf("decode config: %w", err)
		}
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(appCtx *core.AppContext) error {
	m.logger = appCtx.Logger.With("module", "observability.tracing")
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if m.config.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if m.config.SampleRatio < 0 || m.config.SampleRatio > 1 {
		return fmt.Errorf("sample_ratio must be between 0 and 1")
	}
	return nil
}

// Start builds the exporter and installs the provider globally.
func (m *Module) Start() error {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(m.config.Endpoint),
	}
	if m.config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(m.config.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(m.config.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(m.config.ServiceName),
	))
	if err != nil {
		return fmt.Errorf("build resource: %w", err)
	}

	m.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(m.config.SampleRatio))),
	)
	otel.SetTracerProvider(m.provider)

	m.logger.Info("tracing enabled",
		"endpoint", m.config.Endpoint,
		"service", m.config.ServiceName,
		"sample_ratio", m.config.SampleRatio,
	)
	return nil
}

// Stop flushes pending spans and shuts the provider down.
func (m *Module) Stop(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	if err := m.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}
	return nil
}

// Interface guards.
var (
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
)
