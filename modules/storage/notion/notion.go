// Package notion implements a Notion-database-backed idea store. Ideas
// become pages in a configured database; the category taxonomy lives in
// the select options of the Category property.
package notion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/ideavault/ideavault/internal/core"
	"github.com/ideavault/ideavault/internal/storage"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ storage.Store     = (*Store)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
)

// Module wires the Notion store into the app.
type Module struct {
	config Config
	logger *slog.Logger
	store  *Store
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "storage.notion",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if node != nil {
		if err := node.Decode(&m.config); err != nil {
			return fmt.Errorf("notion: decode config: %w", err)
		}
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(appCtx *core.AppContext) error {
	m.logger = appCtx.Logger.With("module", "storage.notion")

	timeout, err := m.config.parsedTimeout()
	if err != nil {
		return err
	}
	m.store = &Store{
		config: m.config,
		logger: m.logger,
		client: &http.Client{Timeout: timeout},
	}

	appCtx.RegisterService("storage.store", m.store)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if m.config.Token == "" {
		return fmt.Errorf("notion: token is required")
	}
	if m.config.DatabaseID == "" {
		return fmt.Errorf("notion: database_id is required")
	}
	return m.config.validateTimeout()
}

// Start implements core.App lifecycle.
func (m *Module) Start() error {
	m.logger.Info("notion storage ready", "database_id", m.config.DatabaseID)
	return nil
}

// Stop implements core.App lifecycle.
func (m *Module) Stop(_ context.Context) error {
	m.store.client.CloseIdleConnections()
	return nil
}

// Store returns the storage.Store implementation.
func (m *Module) Store() storage.Store {
	return m.store
}
