package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/notion-insights/internal/types"
)

// UpsertWeeklySummary writes a summary keyed by its week window. A second
// write for the same window replaces every field; there is never more than
// one row per (week_start, week_end).
func (s *Store) UpsertWeeklySummary(ctx context.Context, summary *types.WeeklySummary) error {
	byType, err := json.Marshal(summary.DocumentsByType)
	if err != nil {
		return fmt.Errorf("failed to marshal type counts: %w", err)
	}
	bySub, err := json.Marshal(summary.DocumentsBySub)
	if err != nil {
		return fmt.Errorf("failed to marshal sub-category counts: %w", err)
	}
	insights, err := json.Marshal(summary.KeyInsights)
	if err != nil {
		return fmt.Errorf("failed to marshal key insights: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO weekly_summaries
			(week_start, week_end, total_documents, documents_by_type, documents_by_subcategory,
			 summary_text, key_insights, generated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (week_start, week_end) DO UPDATE SET
			total_documents = EXCLUDED.total_documents,
			documents_by_type = EXCLUDED.documents_by_type,
			documents_by_subcategory = EXCLUDED.documents_by_subcategory,
			summary_text = EXCLUDED.summary_text,
			key_insights = EXCLUDED.key_insights,
			generated_at = EXCLUDED.generated_at`,
		summary.WeekStart, summary.WeekEnd, summary.TotalDocuments, byType, bySub,
		summary.SummaryText, insights, summary.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert weekly summary: %w", err)
	}
	return nil
}

// WeeklySummaryFor retrieves the summary for an exact week window.
// Returns nil when no summary exists for that window.
func (s *Store) WeeklySummaryFor(ctx context.Context, weekStart, weekEnd time.Time) (*types.WeeklySummary, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT week_start, week_end, total_documents, documents_by_type, documents_by_subcategory,
			summary_text, key_insights, generated_at
		 FROM weekly_summaries
		 WHERE week_start = $1 AND week_end = $2`,
		weekStart, weekEnd,
	)
	summary, err := scanSummary(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return summary, err
}

// ListWeeklySummaries returns summaries newest week first.
func (s *Store) ListWeeklySummaries(ctx context.Context, limit int) ([]types.WeeklySummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx,
		`SELECT week_start, week_end, total_documents, documents_by_type, documents_by_subcategory,
			summary_text, key_insights, generated_at
		 FROM weekly_summaries
		 ORDER BY week_start DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly summaries: %w", err)
	}
	defer rows.Close()

	var summaries []types.WeeklySummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, rows.Err()
}

func scanSummary(row rowScanner) (*types.WeeklySummary, error) {
	var summary types.WeeklySummary
	var byType, bySub, insights []byte
	err := row.Scan(&summary.WeekStart, &summary.WeekEnd, &summary.TotalDocuments,
		&byType, &bySub, &summary.SummaryText, &insights, &summary.GeneratedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(byType, &summary.DocumentsByType); err != nil {
		return nil, fmt.Errorf("failed to decode type counts: %w", err)
	}
	if err := json.Unmarshal(bySub, &summary.DocumentsBySub); err != nil {
		return nil, fmt.Errorf("failed to decode sub-category counts: %w", err)
	}
	if err := json.Unmarshal(insights, &summary.KeyInsights); err != nil {
		return nil, fmt.Errorf("failed to decode key insights: %w", err)
	}
	return &summary, nil
}
