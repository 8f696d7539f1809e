// Package extraction pulls pages out of a Notion database, flattens their
// block content into markdown-ish text, and persists them as documents.
package extraction

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/notion-insights/internal/notion"
	"github.com/jonathan/notion-insights/internal/types"
)

// titleProbes are the property names checked, in order, when resolving a
// page title.
var titleProbes = []string{"title", "Name", "name", "Title"}

// Source is the slice of the Notion client the extractor consumes.
type Source interface {
	QueryDatabase(ctx context.Context, databaseID string, pageSize int, startCursor string) (*notion.QueryResult, error)
	BlockChildren(ctx context.Context, blockID string) ([]notion.Block, error)
}

// Persister is the slice of the store the extractor writes through.
type Persister interface {
	UpsertDocuments(ctx context.Context, docs []types.Document) (created, updated int, err error)
	MarkFailed(ctx context.Context, documentID, message string) error
}

// Extractor runs the extraction stage for one source collection.
type Extractor struct {
	source       Source
	store        Persister
	collectionID string
}

// New creates an extractor bound to one Notion database.
func New(source Source, store Persister, collectionID string) *Extractor {
	return &Extractor{source: source, store: store, collectionID: collectionID}
}

// Extract lists pages of the collection and converts each into a Document.
// maxCount <= 0 means no cap. A page whose content fetch fails is recorded
// as failed and skipped; the remaining pages still come back. Extract only
// returns an error when the collection listing itself fails.
func (e *Extractor) Extract(ctx context.Context, maxCount int) ([]types.Document, error) {
	var docs []types.Document
	cursor := ""

	for {
		pageSize := 0
		if maxCount > 0 {
			remaining := maxCount - len(docs)
			if remaining <= 0 {
				return docs, nil
			}
			pageSize = remaining
		}

		result, err := e.source.QueryDatabase(ctx, e.collectionID, pageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to query collection %s: %w", e.collectionID, err)
		}

		for _, page := range result.Pages {
			if maxCount > 0 && len(docs) >= maxCount {
				return docs, nil
			}

			doc, err := e.extractPage(ctx, page)
			if err != nil {
				log.Printf("extraction failed for page %s: %v", page.ID, err)
				if markErr := e.store.MarkFailed(ctx, page.ID, err.Error()); markErr != nil {
					log.Printf("could not record failure for page %s: %v", page.ID, markErr)
				}
				continue
			}
			docs = append(docs, doc)
		}

		if !result.HasMore || result.NextCursor == "" {
			return docs, nil
		}
		cursor = result.NextCursor
	}
}

// extractPage fetches a page's blocks and assembles the Document.
func (e *Extractor) extractPage(ctx context.Context, page notion.Page) (types.Document, error) {
	blocks, err := e.source.BlockChildren(ctx, page.ID)
	if err != nil {
		return types.Document{}, fmt.Errorf("failed to fetch page content: %w", err)
	}

	properties := make(map[string]any, len(page.Properties))
	for name, prop := range page.Properties {
		properties[name] = prop.Raw
	}

	return types.Document{
		ID:             page.ID,
		Title:          extractTitle(page),
		Content:        flattenBlocks(blocks),
		URL:            page.URL,
		CreatedTime:    page.CreatedTime,
		LastEditedTime: page.LastEditedTime,
		CollectionID:   e.collectionID,
		Properties:     properties,
	}, nil
}

// Persist writes the extracted documents through the store in one batch.
func (e *Extractor) Persist(ctx context.Context, docs []types.Document) (created, updated int, err error) {
	return e.store.UpsertDocuments(ctx, docs)
}

// Run extracts and persists in one step, returning how many documents were
// written.
func (e *Extractor) Run(ctx context.Context, maxCount int) (int, error) {
	docs, err := e.Extract(ctx, maxCount)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	created, updated, err := e.Persist(ctx, docs)
	if err != nil {
		return 0, err
	}
	log.Printf("extraction complete: %d created, %d updated", created, updated)
	return created + updated, nil
}

// extractTitle resolves a page title by probing the conventional title
// property names in order. Pages without any title property get a stable
// placeholder derived from the page ID.
func extractTitle(page notion.Page) string {
	for _, name := range titleProbes {
		if prop, ok := page.Properties[name]; ok {
			if title := prop.TitleText(); title != "" {
				return title
			}
		}
	}

	id := page.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("Untitled Page (%s)", id)
}

// flattenBlocks renders blocks as markdown-style text. Blocks the pipeline
// does not understand, and blocks with no text, are dropped.
func flattenBlocks(blocks []notion.Block) string {
	var parts []string
	for _, block := range blocks {
		text := block.PlainText()
		if text == "" {
			continue
		}

		switch block.Type {
		case notion.BlockHeading1:
			parts = append(parts, "# "+text)
		case notion.BlockHeading2:
			parts = append(parts, "## "+text)
		case notion.BlockHeading3:
			parts = append(parts, "### "+text)
		case notion.BlockBulletedListItem:
			parts = append(parts, "- "+text)
		case notion.BlockNumberedListItem:
			parts = append(parts, "1. "+text)
		case notion.BlockCode:
			parts = append(parts, "```\n"+text+"\n```")
		case notion.BlockParagraph:
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}
