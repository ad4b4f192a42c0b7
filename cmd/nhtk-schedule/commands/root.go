package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"nhtk-schedule/internal/components/telemetry"
	"nhtk-schedule/internal/config"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
)

var otelProviders telemetry.Telemetry

var rootCmd = &cobra.Command{
	Use:   "nhtk-schedule",
	Short: "nhtk-schedule scrapes the NHTK schedule of a group and keeps a remote copy up to date.",
	// errors of a run are already logged with their context
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)

		providers, err := telemetry.SetupFromEnv(cmd.Context(), "nhtk-schedule")
		if err != nil {
			slog.Warn("failed to setup otel export", "err", err)
			return
		}
		otelProviders = providers
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug information.")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file, config.json5 is searched for from the working directory if unset.")
}

func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.Read(configPath, os.Getenv)
	}
	return config.Load()
}

func flushTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	err := otelProviders.Shutdown(ctx)
	if err != nil {
		slog.Warn("failed to flush otel export", "err", err)
	}
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	flushTelemetry()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
