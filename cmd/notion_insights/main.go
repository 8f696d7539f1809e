// Package main provides the notion_insights CLI: a pipeline that extracts
// pages from a Notion database, classifies them with an LLM, and generates
// weekly summary reports.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "notion_insights",
	Short: "Notion document insights pipeline",
	Long:  "notion_insights extracts pages from a Notion database, classifies each document with an LLM, and generates weekly summary reports into PostgreSQL.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
