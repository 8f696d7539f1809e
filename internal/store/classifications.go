package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/notion-insights/internal/types"
)

// UpsertClassifications writes a batch of classifications and advances the
// matching processing records to classified inside one transaction.
// Rollback on any error leaves no partial state for the batch.
func (s *Store) UpsertClassifications(ctx context.Context, classifications []types.Classification) error {
	if len(classifications) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, c := range classifications {
		_, err = tx.Exec(ctx,
			`INSERT INTO document_classifications
				(document_id, document_type, sub_category, confidence_score, classification_reason, classified_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (document_id) DO UPDATE SET
				document_type = EXCLUDED.document_type,
				sub_category = EXCLUDED.sub_category,
				confidence_score = EXCLUDED.confidence_score,
				classification_reason = EXCLUDED.classification_reason,
				classified_at = EXCLUDED.classified_at`,
			c.DocumentID, c.DocumentType, c.SubCategory, c.ConfidenceScore, c.Reason, c.ClassifiedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert classification for %s: %w", c.DocumentID, err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO processing_records (document_id, status, classified_at)
			 VALUES ($1, $2, NOW())
			 ON CONFLICT (document_id) DO UPDATE SET
				status = $2,
				classified_at = NOW(),
				error_message = NULL,
				updated_at = NOW()`,
			c.DocumentID, types.StatusClassified,
		)
		if err != nil {
			return fmt.Errorf("failed to advance processing record for %s: %w", c.DocumentID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit classification batch: %w", err)
	}
	return nil
}

// ClassifiedDocument joins a document with its classification.
type ClassifiedDocument struct {
	Document       types.Document
	Classification types.Classification
}

// ClassifiedInWindow returns document/classification pairs whose document
// creation time lies within [start, end], most recent first. Documents
// without a classification are excluded by the join.
func (s *Store) ClassifiedInWindow(ctx context.Context, start, end time.Time) ([]ClassifiedDocument, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT d.id, d.title, d.content, d.url, d.created_time, d.last_edited_time, d.collection_id, d.properties,
			c.document_type, c.sub_category, c.confidence_score, c.classification_reason, c.classified_at
		 FROM documents d
		 JOIN document_classifications c ON d.id = c.document_id
		 WHERE d.created_time >= $1 AND d.created_time <= $2
		 ORDER BY d.created_time DESC`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query classified documents: %w", err)
	}
	defer rows.Close()

	var pairs []ClassifiedDocument
	for rows.Next() {
		var pair ClassifiedDocument
		var properties []byte
		err := rows.Scan(
			&pair.Document.ID, &pair.Document.Title, &pair.Document.Content, &pair.Document.URL,
			&pair.Document.CreatedTime, &pair.Document.LastEditedTime, &pair.Document.CollectionID, &properties,
			&pair.Classification.DocumentType, &pair.Classification.SubCategory,
			&pair.Classification.ConfidenceScore, &pair.Classification.Reason, &pair.Classification.ClassifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan classified document: %w", err)
		}
		pair.Classification.DocumentID = pair.Document.ID
		if len(properties) > 0 {
			_ = json.Unmarshal(properties, &pair.Document.Properties)
		}
		pairs = append(pairs, pair)
	}
	return pairs, rows.Err()
}
