package commands

import (
	"fmt"
	"os"

	"nhtk-schedule/internal/scrapers/nhtk"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func renderSummary(summary nhtk.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("%s\n%s", summary.Group, summary.Period))
	t.AppendHeader(table.Row{"Day", "Lessons"})
	for _, day := range summary.Days {
		t.AppendRow(table.Row{day.Day, day.Lessons})
	}
	t.AppendFooter(table.Row{"Total", summary.TotalLessons})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

var summaryCmd = &cobra.Command{
	Use:   "summary [page.html]",
	Short: "Prints how many lessons the schedule has per day, fetches the configured page if no file is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var doc nhtk.Document
		if len(args) == 1 {
			doc, err = parseFile(cmd, cfg, args[0], "")
			if err != nil {
				return err
			}
			renderSummary(nhtk.Summarize(doc))
			return nil
		}

		// a summary never writes anything
		cfg.Output = ""
		cfg.Supabase.Url = ""
		cfg.Archive.Dsn = ""
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.close()

		doc, err = a.runner.Run(cmd.Context(), runnerOptions(cfg))
		if err != nil {
			return err
		}
		renderSummary(nhtk.Summarize(doc))
		return nil
	},
}
