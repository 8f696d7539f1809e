// Package types provides type definitions for the documents, classifications,
// and summaries flowing through the processing pipeline.
package types

import "time"

// Document represents a normalized document pulled from the content source.
// The ID is the source-assigned page ID and is stable across re-extraction;
// every other field is replaced wholesale each time the page is seen again.
type Document struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	URL            string         `json:"url"`
	CreatedTime    time.Time      `json:"created_time"`
	LastEditedTime time.Time      `json:"last_edited_time"`
	CollectionID   string         `json:"collection_id"`
	Properties     map[string]any `json:"properties,omitempty"`
}
