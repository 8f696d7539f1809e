package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/notion-insights/internal/observability"
)

var (
	summarizeFlags commonFlags
	summarizeDate  string
)

var summarizeCommand = &cobra.Command{
	Use:   "summarize",
	Short: "Generate the weekly summary report",
	Long:  "Collects the classified documents of one Monday-Sunday week, generates a narrative summary with key insights, and stores it. Defaults to the current week.",
	RunE:  runSummarizeCmd,
}

func init() {
	addCommonFlags(summarizeCommand, &summarizeFlags)
	summarizeCommand.Flags().StringVar(&summarizeDate, "date", "", "Reference date inside the target week (YYYY-MM-DD, defaults to today)")
	rootCmd.AddCommand(summarizeCommand)
}

func runSummarizeCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, &summarizeFlags)
	if err != nil {
		return err
	}

	ref := time.Now()
	if summarizeDate != "" {
		ref, err = time.Parse("2006-01-02", summarizeDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", summarizeDate)
		}
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.pipeline.RunSummary(ctx, ref)
	if err != nil {
		return err
	}

	fmt.Printf("Weekly summary stored for %s to %s (%d documents)\n",
		summary.WeekStart.Format("2006-01-02"), summary.WeekEnd.Format("2006-01-02"), summary.TotalDocuments)

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintWeeklySummary(summary)
	}
	return nil
}
