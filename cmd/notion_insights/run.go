package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/notion-insights/internal/observability"
)

var runFlags commonFlags

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline end-to-end",
	Long: `Orchestrates the entire pipeline: extraction -> classification -> weekly summary.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values; environment variables fill in the rest.`,
	RunE: runPipelineCmd,
}

func init() {
	addCommonFlags(runCommand, &runFlags)
	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, &runFlags)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.pipeline.RunFull(ctx, cfg.MaxDocuments)
	if err != nil {
		return err
	}

	fmt.Printf("Pipeline run %s complete: %d extracted, %d classified\n",
		result.RunID, result.Extracted, result.Classified)

	if cfg.Verbose {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintWeeklySummary(result.Summary)

		stats, err := a.pipeline.Stats(ctx)
		if err != nil {
			return err
		}
		printer.PrintProcessingStats(stats)
	}
	return nil
}
