// Package app provides the entry point for the ideavault binary.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ideavault/ideavault/internal/config"
	"github.com/ideavault/ideavault/internal/core"
	"github.com/ideavault/ideavault/internal/logging"
	"github.com/ideavault/ideavault/internal/mcptool"
)

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is called automatically.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// DataDir overrides the default persistent data directory.
	DataDir string

	// LogLevel sets the minimum log level. Defaults to slog.LevelInfo.
	LogLevel slog.Level
}

// Run loads configuration, starts all modules, wires the idea pipeline
// between them, and blocks until a shutdown signal is received.
func Run(params RunParams) error {
	application, _, err := build(params)
	if err != nil {
		return err
	}
	return application.Run()
}

// RunMCP loads configuration and serves the vault tools over MCP stdio
// instead of starting the channel and gateway modules. Blocks until the
// client closes the stream.
func RunMCP(params RunParams) error {
	application, wired, err := build(params)
	if err != nil {
		return err
	}
	defer application.Stop()
	return mcptool.Run(wired.svc, params.Version)
}

// build performs the common load-and-wire sequence shared by Run and
// RunMCP, stopping just before module Start.
func build(params RunParams) (*core.App, *wiring, error) {
	cfgPath := params.ConfigPath
	if cfgPath == "" {
		resolved, err := ResolveConfigPath()
		if err != nil {
			return nil, nil, err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	// Harvest secrets from the config so they never reach the logs.
	redactor := logging.NewRedactor()
	redactor.CollectSecrets(cfg.Modules)

	inner := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: params.LogLevel,
	})
	logger := slog.New(logging.NewRedactingHandler(inner, redactor))

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}

	appCtx := core.NewAppContext(logger, dataDir)
	appCtx = appCtx.WithModuleConfigs(cfg.Modules)

	// Register the config path so modules can discover it.
	appCtx.RegisterService("config.path", cfgPath)

	application := core.NewApp(appCtx)
	ids := cfg.Resolve()
	if err := application.LoadModules(ids); err != nil {
		return nil, nil, err
	}

	// Wire the pipeline between LoadModules and Start: discover the
	// store, provider, and channel, build the lifecycle service, hook
	// the bot to the channel inbox, and schedule maintenance jobs.
	wired, err := wireVault(application, appCtx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return application, wired, nil
}

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/ideavault/ideavault.yaml →
// ~/.config/ideavault/ideavault.yaml → ./ideavault.yaml
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "ideavault", "ideavault.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "ideavault", "ideavault.yaml"))
	}

	candidates = append(candidates, "ideavault.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/ideavault if set, otherwise ~/.local/share/ideavault
// per the XDG spec.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "ideavault")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "ideavault")
}
