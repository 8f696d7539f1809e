package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/notion-insights/internal/classification"
	"github.com/jonathan/notion-insights/internal/config"
	"github.com/jonathan/notion-insights/internal/extraction"
	"github.com/jonathan/notion-insights/internal/llm"
	"github.com/jonathan/notion-insights/internal/notion"
	"github.com/jonathan/notion-insights/internal/pipeline"
	"github.com/jonathan/notion-insights/internal/store"
	"github.com/jonathan/notion-insights/internal/summary"
)

// commonFlags are shared by every command that runs pipeline stages.
type commonFlags struct {
	configPath  string
	notionToken string
	databaseID  string
	apiKey      string
	databaseURL string
	maxDocs     int
	retryFailed bool
	verbose     bool
}

// addCommonFlags registers the shared flag set on a command.
func addCommonFlags(cmd *cobra.Command, f *commonFlags) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cmd.Flags().StringVar(&f.notionToken, "notion-token", "", "Notion integration token (optional, defaults to NOTION_TOKEN env var)")
	cmd.Flags().StringVar(&f.databaseID, "database-id", "", "Notion database ID to extract from (optional, defaults to NOTION_DATABASE_ID env var)")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	cmd.Flags().StringVar(&f.databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	cmd.Flags().IntVar(&f.maxDocs, "max-documents", 0, "Maximum documents to extract per run (0 = no cap)")
	cmd.Flags().BoolVar(&f.retryFailed, "retry-failed", false, "Re-attempt documents that failed classification")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print formatted stage output")
}

// resolveConfig merges the config file, explicit flags, and environment
// into one Config. Precedence: flags > config file > environment.
func resolveConfig(cmd *cobra.Command, f *commonFlags) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("notion-token") {
		cfg.NotionToken = f.notionToken
	}
	if cmd.Flags().Changed("database-id") {
		cfg.NotionDatabaseID = f.databaseID
	}
	if cmd.Flags().Changed("api-key") {
		cfg.GeminiAPIKey = f.apiKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = f.databaseURL
	}
	if cmd.Flags().Changed("max-documents") {
		cfg.MaxDocuments = f.maxDocs
	}
	if cmd.Flags().Changed("retry-failed") {
		cfg.RetryFailed = f.retryFailed
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	cfg.ApplyEnv()
	cfg = cfg.MergeWithDefaults(config.Config{
		CronSpec:   "0 6 * * 1",
		ServerAddr: ":8080",
	})

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// app bundles the wired pipeline and its resources for one command
// invocation.
type app struct {
	cfg      config.Config
	store    *store.Store
	llm      llm.Client
	pipeline *pipeline.Pipeline
}

// newApp connects the store, creates the clients, and wires the stages.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	if err := cfg.RequirePipeline(); err != nil {
		return nil, err
	}

	st, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	notionClient, err := notion.NewClient(cfg.NotionToken)
	if err != nil {
		st.Close()
		return nil, err
	}

	llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		st.Close()
		return nil, err
	}

	extractor := extraction.New(notionClient, st, cfg.NotionDatabaseID)
	classifier := classification.New(llmClient, st, cfg.RetryFailed)
	summarizer := summary.New(llmClient, st)

	return &app{
		cfg:      cfg,
		store:    st,
		llm:      llmClient,
		pipeline: pipeline.New(extractor, classifier, summarizer, st),
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	if a.llm != nil {
		_ = a.llm.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}
