package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/snapstudy/app"
	"github.com/kbukum/snapstudy/bootstrap"
	"github.com/kbukum/snapstudy/config"
	"github.com/kbukum/snapstudy/observability"
	"github.com/kbukum/snapstudy/version"
)

const serviceName = "snapstudy"

var rootCmd = &cobra.Command{
	Use:          serviceName,
	Short:        "Resilient lecture video pipeline",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./cmd/snapstudy/config.yml, then ./config.yml)")
	rootCmd.PersistentFlags().String("env-file", "", ".env file to load before reading the config")

	rootCmd.AddCommand(serveCmd, processCmd, watchCmd, versionCmd)
}

// loadConfig reads the config file and environment into an app.Config.
// Defaults and validation are applied by bootstrap.NewApp.
func loadConfig(cmd *cobra.Command) (*app.Config, error) {
	var opts []config.LoaderOption
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	if path, _ := cmd.Flags().GetString("env-file"); path != "" {
		opts = append(opts, config.WithEnvFile(path))
	}

	cfg := &app.Config{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Version == "" {
		cfg.Version = version.GetShortVersion()
	}
	return cfg, nil
}

// newApp builds the application and the wired service. Telemetry is set
// up first so the service's instruments land on the installed providers.
func newApp(ctx context.Context, cfg *app.Config, summaryOut io.Writer) (*bootstrap.App[*app.Config], *app.Service, error) {
	a, err := bootstrap.NewApp(cfg)
	if err != nil {
		return nil, nil, err
	}
	if summaryOut != nil {
		a.Summary.SetOutput(summaryOut)
	}

	shutdown, err := observability.Setup(ctx, cfg.Telemetry, cfg.Name, cfg.Version, cfg.Environment, a.Logger.WithComponent("telemetry"))
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: %w", err)
	}
	a.OnStop(func(ctx context.Context) error { return shutdown(ctx) })

	svc, err := app.New(cfg, a.Logger)
	if err != nil {
		return nil, nil, err
	}
	if err := svc.Register(a); err != nil {
		return nil, nil, err
	}
	return a, svc, nil
}
