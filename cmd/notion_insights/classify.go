package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var classifyFlags commonFlags

var classifyCommand = &cobra.Command{
	Use:   "classify",
	Short: "Classify extracted documents",
	Long:  "Runs the LLM classifier over every document awaiting classification and stores the results.",
	RunE:  runClassifyCmd,
}

func init() {
	addCommonFlags(classifyCommand, &classifyFlags)
	rootCmd.AddCommand(classifyCommand)
}

func runClassifyCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, &classifyFlags)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	count, err := a.pipeline.RunClassification(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Classified %d documents\n", count)
	return nil
}
