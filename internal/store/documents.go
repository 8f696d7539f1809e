package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/notion-insights/internal/types"
)

// UpsertDocuments writes a batch of documents and advances their processing
// records to extracted inside one transaction. Either the whole batch lands
// or none of it does. Returns how many documents were newly created and how
// many were updated in place.
//
// A record already at classified keeps that status; re-extraction refreshes
// the document fields and timestamps without regressing the state machine.
func (s *Store) UpsertDocuments(ctx context.Context, docs []types.Document) (created, updated int, err error) {
	if len(docs) == 0 {
		return 0, 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, doc := range docs {
		properties, err := json.Marshal(doc.Properties)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to marshal properties for %s: %w", doc.ID, err)
		}

		var inserted bool
		err = tx.QueryRow(ctx,
			`INSERT INTO documents (id, title, content, url, created_time, last_edited_time, collection_id, properties)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				content = EXCLUDED.content,
				url = EXCLUDED.url,
				created_time = EXCLUDED.created_time,
				last_edited_time = EXCLUDED.last_edited_time,
				collection_id = EXCLUDED.collection_id,
				properties = EXCLUDED.properties,
				updated_at = NOW()
			 RETURNING (xmax = 0)`,
			doc.ID, doc.Title, doc.Content, doc.URL, doc.CreatedTime, doc.LastEditedTime, doc.CollectionID, properties,
		).Scan(&inserted)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to upsert document %s: %w", doc.ID, err)
		}
		if inserted {
			created++
		} else {
			updated++
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO processing_records (document_id, status, extracted_at)
			 VALUES ($1, $2, NOW())
			 ON CONFLICT (document_id) DO UPDATE SET
				status = CASE
					WHEN processing_records.status = $3 THEN processing_records.status
					ELSE $2
				END,
				extracted_at = NOW(),
				error_message = NULL,
				updated_at = NOW()`,
			doc.ID, types.StatusExtracted, types.StatusClassified,
		)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to upsert processing record for %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to commit document batch: %w", err)
	}
	return created, updated, nil
}

// DocumentsByStatus returns documents whose processing record currently has
// one of the given statuses, oldest first.
func (s *Store) DocumentsByStatus(ctx context.Context, statuses ...types.ProcessingStatus) ([]types.Document, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = status
	}

	query := fmt.Sprintf(
		`SELECT d.id, d.title, d.content, d.url, d.created_time, d.last_edited_time, d.collection_id, d.properties
		 FROM documents d
		 JOIN processing_records pr ON d.id = pr.document_id
		 WHERE pr.status IN (%s)
		 ORDER BY d.created_time ASC`,
		strings.Join(placeholders, ", "),
	)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents by status: %w", err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// PendingClassification returns documents awaiting classification. When
// includeFailed is set, records that failed during classification (failed
// status with no classification timestamp) are picked up for retry as well.
func (s *Store) PendingClassification(ctx context.Context, includeFailed bool) ([]types.Document, error) {
	query := `SELECT d.id, d.title, d.content, d.url, d.created_time, d.last_edited_time, d.collection_id, d.properties
		 FROM documents d
		 JOIN processing_records pr ON d.id = pr.document_id
		 WHERE pr.status = $1`
	if includeFailed {
		query += ` OR (pr.status = $2 AND pr.classified_at IS NULL)`
	}
	query += ` ORDER BY d.created_time ASC`

	args := []any{types.StatusExtracted}
	if includeFailed {
		args = append(args, types.StatusFailed)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending documents: %w", err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// MarkFailed records a per-document stage failure. This is a single-row
// write outside any batch transaction so one bad document never blocks its
// batch siblings.
//
// A record already at classified keeps that status: a re-extraction failure
// must not demote a document the pipeline has fully processed. The error
// message is still recorded for diagnosis.
func (s *Store) MarkFailed(ctx context.Context, documentID, message string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO processing_records (document_id, status, error_message)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (document_id) DO UPDATE SET
			status = CASE
				WHEN processing_records.status = $4 THEN processing_records.status
				ELSE $2
			END,
			error_message = $3,
			updated_at = NOW()`,
		documentID, types.StatusFailed, message, types.StatusClassified,
	)
	if err != nil {
		return fmt.Errorf("failed to mark document %s failed: %w", documentID, err)
	}
	return nil
}

// ProcessingStats counts processing records by status.
func (s *Store) ProcessingStats(ctx context.Context) (types.ProcessingStats, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM processing_records GROUP BY status`)
	if err != nil {
		return types.ProcessingStats{}, fmt.Errorf("failed to query processing stats: %w", err)
	}
	defer rows.Close()

	var stats types.ProcessingStats
	for rows.Next() {
		var status types.ProcessingStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return types.ProcessingStats{}, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats.Total += count
		switch status {
		case types.StatusExtracted:
			stats.Extracted = count
		case types.StatusClassified:
			stats.Classified = count
		case types.StatusFailed:
			stats.Failed = count
		}
	}
	return stats, rows.Err()
}

// rowScanner is the subset of pgx.Rows used by scanDocument.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (types.Document, error) {
	var doc types.Document
	var properties []byte
	err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.URL,
		&doc.CreatedTime, &doc.LastEditedTime, &doc.CollectionID, &properties)
	if err != nil {
		return types.Document{}, fmt.Errorf("failed to scan document: %w", err)
	}
	if len(properties) > 0 {
		if err := json.Unmarshal(properties, &doc.Properties); err != nil {
			// Stored properties are opaque; a corrupt blob degrades to empty.
			doc.Properties = nil
		}
	}
	return doc, nil
}
