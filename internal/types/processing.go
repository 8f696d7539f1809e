package types

import "time"

// ProcessingStatus tracks how far a document has moved through the pipeline.
type ProcessingStatus string

// Processing statuses. Normal flow is pending -> extracted -> classified;
// failed is reachable from either in-progress state.
const (
	StatusPending    ProcessingStatus = "pending"
	StatusExtracted  ProcessingStatus = "extracted"
	StatusClassified ProcessingStatus = "classified"
	StatusFailed     ProcessingStatus = "failed"
)

// ProcessingRecord tracks per-document pipeline progress. One record exists
// per document; the two processing stages are the only writers.
type ProcessingRecord struct {
	DocumentID   string           `json:"document_id"`
	Status       ProcessingStatus `json:"status"`
	ExtractedAt  *time.Time       `json:"extracted_at,omitempty"`
	ClassifiedAt *time.Time       `json:"classified_at,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ProcessingStats holds the per-status record counts reported by the
// stats surface.
type ProcessingStats struct {
	Total      int `json:"total_documents"`
	Extracted  int `json:"extracted"`
	Classified int `json:"classified"`
	Failed     int `json:"failed"`
}
