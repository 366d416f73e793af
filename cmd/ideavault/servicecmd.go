package main

import (
	"fmt"
	"log/slog"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/ideavault/ideavault/pkg/app"
)

// program adapts the application loop to the kardianos service
// interface. Start must not block, so the loop runs in a goroutine.
type program struct {
	cfgPath string
	errCh   chan error
}

func (p *program) Start(service.Service) error {
	p.errCh = make(chan error, 1)
	go func() {
		p.errCh <- app.Run(app.RunParams{
			ConfigPath: p.cfgPath,
			Version:    version,
			LogLevel:   slog.LevelInfo,
		})
	}()
	return nil
}

func (p *program) Stop(service.Service) error {
	// app.Run exits on SIGTERM, which the service manager sends.
	return nil
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage ideavault as a system service",
	}

	var cfgPath string
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to configuration file")

	newService := func() (service.Service, error) {
		svcConfig := &service.Config{
			Name:        "ideavault",
			DisplayName: "ideavault",
			Description: "Telegram idea vault with AI-powered enrichment",
			Arguments:   serviceArgs(cfgPath),
		}
		return service.New(&program{cfgPath: cfgPath}, svcConfig)
	}

	for _, action := range []string{"install", "uninstall", "start", "stop"} {
		cmd.AddCommand(&cobra.Command{
			Use:   action,
			Short: fmt.Sprintf("%s the system service", title(action)),
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, err := newService()
				if err != nil {
					return err
				}
				if err := service.Control(svc, cmd.Use); err != nil {
					return fmt.Errorf("service %s: %w", cmd.Use, err)
				}
				fmt.Printf("Service %s: done\n", cmd.Use)
				return nil
			},
		})
	}

	// "run" is what the service manager invokes; not meant for users.
	run := &cobra.Command{
		Use:    "run",
		Hidden: true,
		RunE: func(*cobra.Command, []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			return svc.Run()
		},
	}
	cmd.AddCommand(run)

	return cmd
}

func serviceArgs(cfgPath string) []string {
	args := []string{"service", "run"}
	if cfgPath != "" {
		args = append(args, "--config", cfgPath)
	}
	return args
}

func title(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
