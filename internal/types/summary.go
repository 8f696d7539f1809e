package types

import "time"

// WeeklySummary is the aggregated narrative report for one Monday–Sunday
// window. Exactly one summary exists per (WeekStart, WeekEnd) pair;
// regeneration replaces it in place.
type WeeklySummary struct {
	WeekStart       time.Time            `json:"week_start"`
	WeekEnd         time.Time            `json:"week_end"`
	TotalDocuments  int                  `json:"total_documents"`
	DocumentsByType map[DocumentType]int `json:"documents_by_type"`
	DocumentsBySub  map[SubCategory]int  `json:"documents_by_subcategory"`
	SummaryText     string               `json:"summary_text"`
	KeyInsights     []string             `json:"key_insights"`
	GeneratedAt     time.Time            `json:"generated_at"`
}
