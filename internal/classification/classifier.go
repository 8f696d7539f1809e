// Package classification assigns a category and sub-category to each
// extracted document by calling the LLM once per document and validating
// the response before it is accepted.
package classification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jonathan/notion-insights/internal/llm"
	"github.com/jonathan/notion-insights/internal/prompts"
	"github.com/jonathan/notion-insights/internal/schemas"
	"github.com/jonathan/notion-insights/internal/types"
)

const (
	// maxContentChars caps how much document content goes into the prompt.
	maxContentChars = 4000
	// interCallDelay spaces out sequential LLM calls within a batch.
	interCallDelay = 100 * time.Millisecond

	classifyTemperature     = 0.1
	classifyMaxOutputTokens = 500
)

// ResponseError wraps a rejected LLM response together with the raw text,
// so failures can be diagnosed from the processing record.
type ResponseError struct {
	Raw   string
	Cause error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("invalid classification response: %v", e.Cause)
}

func (e *ResponseError) Unwrap() error {
	return e.Cause
}

// Repository is the slice of the store the classifier uses.
type Repository interface {
	PendingClassification(ctx context.Context, includeFailed bool) ([]types.Document, error)
	UpsertClassifications(ctx context.Context, classifications []types.Classification) error
	MarkFailed(ctx context.Context, documentID, message string) error
}

// Classifier runs the classification stage.
type Classifier struct {
	llm         llm.Client
	store       Repository
	retryFailed bool
}

// New creates a classifier. When retryFailed is set, documents that failed
// during a previous classification attempt are picked up again.
func New(client llm.Client, store Repository, retryFailed bool) *Classifier {
	return &Classifier{llm: client, store: store, retryFailed: retryFailed}
}

// SelectPending returns the documents awaiting classification, oldest first.
func (c *Classifier) SelectPending(ctx context.Context) ([]types.Document, error) {
	return c.store.PendingClassification(ctx, c.retryFailed)
}

// classifyResponse mirrors the JSON shape the model is instructed to return.
type classifyResponse struct {
	DocumentType    string  `json:"document_type"`
	SubCategory     string  `json:"sub_category"`
	ConfidenceScore float64 `json:"confidence_score"`
	Reason          string  `json:"classification_reason"`
}

// Classify categorizes a single document. The LLM response is validated
// fail-closed: schema violations, unknown fields, and invalid enum pairings
// all reject the response rather than storing a best guess.
func (c *Classifier) Classify(ctx context.Context, doc types.Document) (types.Classification, error) {
	content := llm.TruncateText(doc.Content, maxContentChars)

	userPrompt := prompts.Format(
		prompts.MustGet("classification.json", "classify-document"),
		map[string]string{"Title": doc.Title, "Content": content},
	)
	systemPrompt := prompts.MustGet("classification.json", "system")

	raw, err := c.llm.GenerateJSON(ctx, systemPrompt, userPrompt, llm.GenerateOptions{
		Tier:            llm.TierLite,
		Temperature:     classifyTemperature,
		MaxOutputTokens: classifyMaxOutputTokens,
	})
	if err != nil {
		return types.Classification{}, fmt.Errorf("classification call failed for %s: %w", doc.ID, err)
	}

	if err := schemas.Validate(schemas.ClassificationResponse, raw); err != nil {
		return types.Classification{}, &ResponseError{Raw: raw, Cause: err}
	}

	var resp classifyResponse
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&resp); err != nil {
		return types.Classification{}, &ResponseError{Raw: raw, Cause: err}
	}

	result := types.Classification{
		DocumentID:      doc.ID,
		DocumentType:    types.DocumentType(resp.DocumentType),
		SubCategory:     types.SubCategory(resp.SubCategory),
		ConfidenceScore: resp.ConfidenceScore,
		Reason:          resp.Reason,
		ClassifiedAt:    time.Now().UTC(),
	}
	if err := result.Validate(); err != nil {
		return types.Classification{}, &ResponseError{Raw: raw, Cause: err}
	}
	return result, nil
}

// ClassifyBatch classifies documents sequentially. A document whose
// classification fails is marked failed and skipped; the rest of the batch
// proceeds. Returns the successful classifications.
func (c *Classifier) ClassifyBatch(ctx context.Context, docs []types.Document) []types.Classification {
	var results []types.Classification
	for i, doc := range docs {
		if i > 0 {
			select {
			case <-time.After(interCallDelay):
			case <-ctx.Done():
				return results
			}
		}

		result, err := c.Classify(ctx, doc)
		if err != nil {
			log.Printf("classification failed for document %s: %v", doc.ID, err)
			if markErr := c.store.MarkFailed(ctx, doc.ID, err.Error()); markErr != nil {
				log.Printf("could not record failure for document %s: %v", doc.ID, markErr)
			}
			continue
		}
		results = append(results, result)
	}
	return results
}

// Persist writes the classifications through the store in one batch.
func (c *Classifier) Persist(ctx context.Context, results []types.Classification) error {
	return c.store.UpsertClassifications(ctx, results)
}

// Run selects, classifies, and persists in one step, returning how many
// documents were successfully classified.
func (c *Classifier) Run(ctx context.Context) (int, error) {
	docs, err := c.SelectPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to select pending documents: %w", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	results := c.ClassifyBatch(ctx, docs)
	if len(results) == 0 {
		return 0, nil
	}

	if err := c.Persist(ctx, results); err != nil {
		return 0, err
	}
	log.Printf("classification complete: %d of %d documents classified", len(results), len(docs))
	return len(results), nil
}
