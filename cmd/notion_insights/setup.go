package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/notion-insights/internal/store"
)

var setupDatabaseURL string

var setupCommand = &cobra.Command{
	Use:   "setup",
	Short: "Create the database schema",
	Long:  "Creates the documents, classifications, summaries, processing, and run tables if they do not exist. Safe to re-run.",
	RunE:  runSetupCmd,
}

func init() {
	setupCommand.Flags().StringVar(&setupDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	rootCmd.AddCommand(setupCommand)
}

func runSetupCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	databaseURL := setupDatabaseURL
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

	if err := st.Setup(ctx); err != nil {
		return err
	}

	fmt.Println("Database schema created")
	return nil
}
