package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ideavault/ideavault/internal/config"
	"github.com/ideavault/ideavault/internal/core"
	"github.com/ideavault/ideavault/pkg/app"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(), configInitCmd())
	return cmd
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}))
			appCtx := core.NewAppContext(logger, app.DefaultDataDir())
			appCtx = appCtx.WithModuleConfigs(cfg.Modules)

			application := core.NewApp(appCtx)
			ids := cfg.Resolve()
			if err := application.LoadModules(ids); err != nil {
				return err
			}
			defer application.Stop()

			fmt.Printf("Configuration OK (%d modules)\n", len(ids))
			for _, id := range ids {
				fmt.Printf("  %s\n", id)
			}
			return nil
		},
	}
}

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("output")
			if out == "" {
				out = defaultConfigPath()
			}
			if _, err := os.Stat(out); err == nil {
				return fmt.Errorf("%s already exists, move it away first", out)
			}

			answers, err := runInitWizard()
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(out, []byte(renderConfig(answers)), 0o600); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", out)
			fmt.Println("Start the bot with: ideavault start --config", out)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Where to write the config (default: XDG config dir)")
	return cmd
}

// initAnswers collects the wizard results.
type initAnswers struct {
	TelegramToken     string
	OpenAIKey         string
	Model             string
	Storage           string
	NotionToken       string
	NotionDatabaseID  string
	SkipClarification bool
}

func runInitWizard() (*initAnswers, error) {
	a := &initAnswers{Model: "gpt-4o-mini", Storage: "sqlite"}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram bot token").
				Description("From @BotFather.").
				Value(&a.TelegramToken).
				Validate(required("token")),
			huh.NewInput().
				Title("OpenAI API key").
				EchoMode(huh.EchoModePassword).
				Value(&a.OpenAIKey).
				Validate(required("api key")),
			huh.NewInput().
				Title("Completion model").
				Value(&a.Model),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Storage backend").
				Options(
					huh.NewOption("SQLite (local file)", "sqlite"),
					huh.NewOption("Notion database", "notion"),
				).
				Value(&a.Storage),
			huh.NewConfirm().
				Title("Skip the clarifying question?").
				Description("When enabled, ideas are enriched immediately after capture.").
				Value(&a.SkipClarification),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Notion integration token").
				EchoMode(huh.EchoModePassword).
				Value(&a.NotionToken),
			huh.NewInput().
				Title("Notion database ID").
				Value(&a.NotionDatabaseID),
		).WithHideFunc(func() bool { return a.Storage != "notion" }),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}
	return a, nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// renderConfig produces the YAML for the chosen setup. Values the user
// typed go in verbatim; secrets can be swapped for ${ENV_VAR} later.
func renderConfig(a *initAnswers) string {
	var b strings.Builder
	b.WriteString("version: \"1\"\n\n")

	b.WriteString("bot:\n")
	fmt.Fprintf(&b, "  skip_clarification: %v\n\n", a.SkipClarification)

	b.WriteString("jobs:\n")
	b.WriteString("  cost_reset: \"0 0 * * *\"\n\n")

	b.WriteString("modules:\n")
	b.WriteString("  channel.telegram:\n")
	fmt.Fprintf(&b, "    token: %q\n", a.TelegramToken)
	b.WriteString("  provider.openai:\n")
	fmt.Fprintf(&b, "    api_key: %q\n", a.OpenAIKey)
	fmt.Fprintf(&b, "    model: %q\n", a.Model)

	switch a.Storage {
	case "notion":
		b.WriteString("  storage.notion:\n")
		fmt.Fprintf(&b, "    token: %q\n", a.NotionToken)
		fmt.Fprintf(&b, "    database_id: %q\n", a.NotionDatabaseID)
	default:
		b.WriteString("  storage.sqlite: {}\n")
	}

	return b.String()
}

func defaultConfigPath() string {
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		return filepath.Join(xdg, "ideavault", "ideavault.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ideavault", "ideavault.yaml")
}
