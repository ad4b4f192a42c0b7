package commands

import (
	"log/slog"

	"nhtk-schedule/internal/components/chrono"
	"nhtk-schedule/internal/components/telemetry"
	"nhtk-schedule/internal/config"
	"nhtk-schedule/internal/runner"
	"nhtk-schedule/pkg/serviceutil"

	"github.com/spf13/cobra"
)

var watchFlags struct {
	cron string
	now  bool
}

func init() {
	watchCmd.Flags().StringVar(&watchFlags.cron, "cron", "", "The cron spec to run on, overrides the config.")
	watchCmd.Flags().BoolVar(&watchFlags.now, "now", false, "Run once immediately before waiting for the first tick.")
	rootCmd.AddCommand(watchCmd)
}

func runnerOptions(cfg config.Config) runner.Options {
	return runner.Options{
		Url:       cfg.Url,
		Output:    cfg.Output,
		Force:     cfg.Force,
		Scheduled: cfg.Scheduled,
	}
}

// tick performs one independent run, the config is read again so that
// changes to it apply without a restart.
func tick(cmd *cobra.Command) {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to read config", "err", err)
		return
	}
	cfg.Scheduled = true
	logTrigger(cfg)

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		slog.Error("failed to setup run", "err", err)
		return
	}
	defer a.close()

	doc, err := a.runner.Run(cmd.Context(), runnerOptions(cfg))
	if err != nil {
		slog.Error("run failed", "err", err)
		return
	}
	slog.Info("run finished", "group", doc.Metadata.Group, "lessons", len(doc.Schedule))
}

var watchCmd = &cobra.Command{
	Use:   "watch [--cron <spec>] [--now]",
	Short: "Keeps running the scrape on a cron schedule until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		spec := cfg.Cron
		if watchFlags.cron != "" {
			spec = watchFlags.cron
		}

		cron := chrono.NewStandardCron(telemetry.SlogAPI{})
		defer cron.Stop()

		err = cron.Cron(spec, func() { tick(cmd) })
		if err != nil {
			serviceutil.Fatal("invalid cron spec", err)
		}
		slog.Info("watching schedule", "cron", spec, "url", cfg.Url)

		if watchFlags.now {
			tick(cmd)
		}
		<-cmd.Context().Done()
		slog.Info("stopping, waiting for a running scrape to finish")
	},
}
