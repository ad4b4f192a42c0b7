package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var runFlags struct {
	url    string
	output string
	force  bool
}

func init() {
	runCmd.Flags().StringVar(&runFlags.url, "url", "", "The schedule page to scrape, overrides the config.")
	runCmd.Flags().StringVarP(&runFlags.output, "output", "o", "", "Where to write the parsed schedule, overrides the config.")
	runCmd.Flags().BoolVar(&runFlags.force, "force", false, "Sync even if the schedule did not change.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--url <page>] [--output <path/to/schedule.json>] [--force]",
	Short: "Scrapes the schedule page once and syncs it to the configured sinks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if runFlags.url != "" {
			cfg.Url = runFlags.url
		}
		if runFlags.output != "" {
			cfg.Output = runFlags.output
		}
		cfg.Force = cfg.Force || runFlags.force
		logTrigger(cfg)

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.close()

		doc, err := a.runner.Run(cmd.Context(), runnerOptions(cfg))
		if err != nil {
			return err
		}

		slog.Info(
			"run finished",
			"group", doc.Metadata.Group,
			"lessons", len(doc.Schedule),
			"output", cfg.Output,
		)
		return nil
	},
}
