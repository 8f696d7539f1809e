package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/notion-insights/internal/observability"
	"github.com/jonathan/notion-insights/internal/store"
)

var statsDatabaseURL string

var statsCommand = &cobra.Command{
	Use:   "stats",
	Short: "Show processing status counts and recent runs",
	RunE:  runStatsCmd,
}

func init() {
	statsCommand.Flags().StringVar(&statsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	rootCmd.AddCommand(statsCommand)
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	databaseURL := statsDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("database URL is required (set DATABASE_URL or --db-url)")
	}

	st, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.ProcessingStats(ctx)
	if err != nil {
		return err
	}

	runs, err := st.ListRuns(ctx, 5)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintProcessingStats(stats)
	printer.PrintRuns(runs)
	return nil
}
