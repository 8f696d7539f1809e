// Package store provides PostgreSQL persistence for documents,
// classifications, processing records, and weekly summaries.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a PostgreSQL connection pool. One Store is constructed at
// process start and passed into each stage; there is no package-level
// shared handle.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Setup creates the schema if it does not exist yet.
func (s *Store) Setup(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			url TEXT NOT NULL,
			created_time TIMESTAMPTZ NOT NULL,
			last_edited_time TIMESTAMPTZ NOT NULL,
			collection_id TEXT NOT NULL,
			properties JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS processing_records (
			document_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			extracted_at TIMESTAMPTZ,
			classified_at TIMESTAMPTZ,
			error_message TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS document_classifications (
			document_id TEXT PRIMARY KEY,
			document_type TEXT NOT NULL,
			sub_category TEXT NOT NULL,
			confidence_score DOUBLE PRECISION NOT NULL,
			classification_reason TEXT NOT NULL,
			classified_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS weekly_summaries (
			week_start TIMESTAMPTZ NOT NULL,
			week_end TIMESTAMPTZ NOT NULL,
			total_documents INTEGER NOT NULL,
			documents_by_type JSONB NOT NULL,
			documents_by_subcategory JSONB NOT NULL,
			summary_text TEXT NOT NULL,
			key_insights JSONB NOT NULL,
			generated_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (week_start, week_end)
		)`,
		`CREATE TABLE IF NOT EXISTS pipeline_runs (
			id UUID PRIMARY KEY,
			status TEXT NOT NULL,
			extracted_count INTEGER NOT NULL DEFAULT 0,
			classified_count INTEGER NOT NULL DEFAULT 0,
			error_message TEXT,
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_processing_records_status
			ON processing_records (status)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_created_time
			ON documents (created_time)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
