package commands

import (
	"os"

	"nhtk-schedule/internal/components/chrono"
	"nhtk-schedule/internal/components/telemetry"
	"nhtk-schedule/internal/config"
	"nhtk-schedule/internal/runner"
	"nhtk-schedule/internal/scrapers/nhtk"

	"github.com/spf13/cobra"
)

var parseFlags struct {
	sourceUrl string
	output    string
}

func init() {
	parseCmd.Flags().StringVar(&parseFlags.sourceUrl, "source-url", "", "The url recorded as the source of the page, defaults to the configured url.")
	parseCmd.Flags().StringVarP(&parseFlags.output, "output", "o", "", "Where to write the parsed schedule, stdout if unset.")
	rootCmd.AddCommand(parseCmd)
}

func parseFile(cmd *cobra.Command, cfg config.Config, path, sourceUrl string) (nhtk.Document, error) {
	markup, err := os.ReadFile(path)
	if err != nil {
		return nhtk.Document{}, err
	}
	if sourceUrl == "" {
		sourceUrl = nhtk.PageUrl(cfg.Url)
	}
	parser := nhtk.NewParser(cfg.ParserOptions(), chrono.NewStandardTime(), telemetry.SlogAPI{})
	return parser.Parse(cmd.Context(), markup, sourceUrl)
}

var parseCmd = &cobra.Command{
	Use:   "parse <page.html> [--source-url <url>] [--output <path/to/schedule.json>]",
	Short: "Parses a schedule page saved on disk without touching the network or any sink.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		doc, err := parseFile(cmd, cfg, args[0], parseFlags.sourceUrl)
		if err != nil {
			return err
		}
		if parseFlags.output != "" {
			return runner.WriteDocument(parseFlags.output, doc)
		}
		return runner.EncodeDocument(os.Stdout, doc)
	},
}
