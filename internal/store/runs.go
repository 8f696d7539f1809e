package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run status values recorded in pipeline_runs.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Run is one audit record for a pipeline invocation.
type Run struct {
	ID              uuid.UUID
	Status          string
	ExtractedCount  int
	ClassifiedCount int
	ErrorMessage    string
	StartedAt       time.Time
	CompletedAt     *time.Time
}

// CreateRun opens an audit record for a pipeline invocation and returns its ID.
func (s *Store) CreateRun(ctx context.Context) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO pipeline_runs (id, status) VALUES ($1, $2)`,
		id, RunRunning,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create pipeline run: %w", err)
	}
	return id, nil
}

// CompleteRun closes an audit record with its final status and stage counts.
// The counts reflect work finished before any failure, so a partially
// successful run still reports what it accomplished.
func (s *Store) CompleteRun(ctx context.Context, id uuid.UUID, status string, extracted, classified int, errMsg string) error {
	var message *string
	if errMsg != "" {
		message = &errMsg
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE pipeline_runs
		 SET status = $2, extracted_count = $3, classified_count = $4,
			error_message = $5, completed_at = NOW()
		 WHERE id = $1`,
		id, status, extracted, classified, message,
	)
	if err != nil {
		return fmt.Errorf("failed to complete pipeline run %s: %w", id, err)
	}
	return nil
}

// ListRuns returns pipeline runs newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, status, extracted_count, classified_count, error_message, started_at, completed_at
		 FROM pipeline_runs
		 ORDER BY started_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var message *string
		err := rows.Scan(&run.ID, &run.Status, &run.ExtractedCount, &run.ClassifiedCount,
			&message, &run.StartedAt, &run.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pipeline run: %w", err)
		}
		if message != nil {
			run.ErrorMessage = *message
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
