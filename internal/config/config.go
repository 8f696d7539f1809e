// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Environment variable names recognized by ApplyEnv.
const (
	EnvNotionToken      = "NOTION_TOKEN"
	EnvNotionDatabaseID = "NOTION_DATABASE_ID"
	EnvGeminiAPIKey     = "GEMINI_API_KEY"
	EnvDatabaseURL      = "DATABASE_URL"
)

var validate = validator.New()

// Config represents the CLI configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via environment variables or CLI flags.
type Config struct {
	// Credentials and endpoints
	NotionToken      string `json:"notion_token,omitempty"`       // Notion integration token
	NotionDatabaseID string `json:"notion_database_id,omitempty"` // Source database to extract from
	GeminiAPIKey     string `json:"gemini_api_key,omitempty"`     // Gemini API key
	DatabaseURL      string `json:"database_url,omitempty"`       // PostgreSQL connection URL

	// Behavior
	MaxDocuments int  `json:"max_documents,omitempty" validate:"gte=0"` // Cap on documents per extraction (0 = no cap)
	RetryFailed  bool `json:"retry_failed,omitempty"`                   // Re-attempt documents that failed classification
	Verbose      bool `json:"verbose,omitempty"`                        // Print formatted stage output

	// Long-running modes
	CronSpec   string `json:"cron_spec,omitempty"`                                      // Schedule for the scheduler mode
	ServerAddr string `json:"server_addr,omitempty" validate:"omitempty,hostname_port"` // Listen address for the API server
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv fills empty credential fields from the environment. Values
// already set (from a config file or flag) win over the environment.
func (c *Config) ApplyEnv() {
	if c.NotionToken == "" {
		c.NotionToken = os.Getenv(EnvNotionToken)
	}
	if c.NotionDatabaseID == "" {
		c.NotionDatabaseID = os.Getenv(EnvNotionDatabaseID)
	}
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = os.Getenv(EnvGeminiAPIKey)
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv(EnvDatabaseURL)
	}
}

// Validate checks field formats and ranges. Required-field checks happen in
// the commands after merging, since not every command needs every field.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("config error: field %s failed %q validation", first.Field(), first.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// RequirePipeline checks the fields every pipeline invocation needs.
func (c *Config) RequirePipeline() error {
	if c.NotionToken == "" {
		return fmt.Errorf("notion token is required (set %s or notion_token in the config file)", EnvNotionToken)
	}
	if c.NotionDatabaseID == "" {
		return fmt.Errorf("notion database ID is required (set %s or notion_database_id in the config file)", EnvNotionDatabaseID)
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("gemini API key is required (set %s or gemini_api_key in the config file)", EnvGeminiAPIKey)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database URL is required (set %s or database_url in the config file)", EnvDatabaseURL)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.NotionToken == "" {
		result.NotionToken = defaults.NotionToken
	}
	if result.NotionDatabaseID == "" {
		result.NotionDatabaseID = defaults.NotionDatabaseID
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.CronSpec == "" {
		result.CronSpec = defaults.CronSpec
	}
	if result.ServerAddr == "" {
		result.ServerAddr = defaults.ServerAddr
	}
	if result.MaxDocuments == 0 {
		result.MaxDocuments = defaults.MaxDocuments
	}
	if !result.RetryFailed {
		result.RetryFailed = defaults.RetryFailed
	}
	if !result.Verbose {
		result.Verbose = defaults.Verbose
	}

	return result
}
