package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var extractFlags commonFlags

var extractCommand = &cobra.Command{
	Use:   "extract",
	Short: "Extract documents from the Notion database",
	Long:  "Pulls pages from the configured Notion database, flattens their content, and stores them as documents awaiting classification.",
	RunE:  runExtractCmd,
}

func init() {
	addCommonFlags(extractCommand, &extractFlags)
	rootCmd.AddCommand(extractCommand)
}

func runExtractCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, &extractFlags)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	count, err := a.pipeline.RunExtraction(ctx, cfg.MaxDocuments)
	if err != nil {
		return err
	}

	fmt.Printf("Extracted %d documents\n", count)
	return nil
}
