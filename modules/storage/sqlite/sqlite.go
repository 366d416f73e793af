// Package sqlite implements a local SQLite-backed idea store. It uses
// modernc.org/sqlite (pure Go, no CGO) with WAL mode.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ideavault/ideavault/internal/core"
	"github.com/ideavault/ideavault/internal/storage"

	_ "modernc.org/sqlite" // SQLite driver registration
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ storage.Store     = (*ideaStore)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
)

// Module implements a SQLite-backed storage.Store.
type Module struct {
	config Config
	db     *sql.DB
	logger *slog.Logger
	store  *ideaStore
}

// ideaStore implements storage.Store backed by SQLite.
type ideaStore struct {
	db *sql.DB
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "storage.sqlite",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if node != nil {
		if err := node.Decode(&m.config); err != nil {
			return fmt.Errorf("sqlite: decode config: %w", err)
		}
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(appCtx *core.AppContext) error {
	m.config.defaults()
	m.logger = appCtx.Logger.With("module", "storage.sqlite")

	if m.config.Path == "" {
		m.config.Path = filepath.Join(appCtx.DataDir, defaultDBFile)
	}

	if dir := filepath.Dir(m.config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", m.config.Path)
	if err != nil {
		return fmt.Errorf("sqlite: open %s: %w", m.config.Path, err)
	}

	// SQLite handles one writer at a time; limit pool to 1 connection
	// so PRAGMAs apply consistently.
	db.SetMaxOpenConns(1)

	if m.config.walEnabled() {
		if _, err := db.ExecContext(context.TODO(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return fmt.Errorf("sqlite: enable WAL: %w", err)
		}
	}

	if _, err := db.ExecContext(context.TODO(), fmt.Sprintf("PRAGMA busy_timeout=%d", m.config.BusyTimeout)); err != nil {
		_ = db.Close()
		return fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return err
	}

	m.db = db
	m.store = &ideaStore{db: db}

	appCtx.RegisterService("storage.store", m.store)

	m.logger.Info("sqlite storage provisioned",
		"path", m.config.Path,
		"wal", m.config.walEnabled(),
	)

	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if err := m.config.validate(); err != nil {
		return err
	}
	if err := m.db.PingContext(context.TODO()); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return nil
}

// Start implements core.App lifecycle.
func (m *Module) Start() error { return nil }

// Stop implements core.App lifecycle.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("sqlite storage stopping")
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Store returns the storage.Store implementation.
func (m *Module) Store() storage.Store {
	return m.store
}
