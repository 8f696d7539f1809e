// Package pipeline orchestrates the three processing stages and records an
// audit trail of each full run.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/notion-insights/internal/store"
	"github.com/jonathan/notion-insights/internal/types"
)

// ExtractionStage pulls documents from the source and persists them.
type ExtractionStage interface {
	Run(ctx context.Context, maxCount int) (int, error)
}

// ClassificationStage classifies pending documents.
type ClassificationStage interface {
	Run(ctx context.Context) (int, error)
}

// SummaryStage generates and persists the weekly summary.
type SummaryStage interface {
	Run(ctx context.Context, ref time.Time) (*types.WeeklySummary, error)
}

// Auditor is the slice of the store the pipeline uses for bookkeeping.
type Auditor interface {
	CreateRun(ctx context.Context) (uuid.UUID, error)
	CompleteRun(ctx context.Context, id uuid.UUID, status string, extracted, classified int, errMsg string) error
	ProcessingStats(ctx context.Context) (types.ProcessingStats, error)
}

// Pipeline wires the stages together. Stages run strictly in order; a stage
// failure stops the run but the audit record keeps the counts achieved
// before the failure.
type Pipeline struct {
	extraction     ExtractionStage
	classification ClassificationStage
	summary        SummaryStage
	auditor        Auditor
}

// New creates a pipeline from its stages.
func New(extraction ExtractionStage, classification ClassificationStage, summary SummaryStage, auditor Auditor) *Pipeline {
	return &Pipeline{
		extraction:     extraction,
		classification: classification,
		summary:        summary,
		auditor:        auditor,
	}
}

// Result reports what a full run accomplished.
type Result struct {
	RunID      uuid.UUID
	Extracted  int
	Classified int
	Summary    *types.WeeklySummary
}

// RunExtraction runs only the extraction stage.
func (p *Pipeline) RunExtraction(ctx context.Context, limit int) (int, error) {
	return p.extraction.Run(ctx, limit)
}

// RunClassification runs only the classification stage.
func (p *Pipeline) RunClassification(ctx context.Context) (int, error) {
	return p.classification.Run(ctx)
}

// RunSummary runs only the summarization stage for the week enclosing ref.
func (p *Pipeline) RunSummary(ctx context.Context, ref time.Time) (*types.WeeklySummary, error) {
	return p.summary.Run(ctx, ref)
}

// Stats returns the current processing status counts.
func (p *Pipeline) Stats(ctx context.Context) (types.ProcessingStats, error) {
	return p.auditor.ProcessingStats(ctx)
}

// RunFull executes extraction, classification, and summarization in order,
// wrapped in one audit record.
func (p *Pipeline) RunFull(ctx context.Context, limit int) (*Result, error) {
	runID, err := p.auditor.CreateRun(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open pipeline run: %w", err)
	}
	result := &Result{RunID: runID}

	fail := func(stage string, stageErr error) (*Result, error) {
		message := fmt.Sprintf("%s stage: %v", stage, stageErr)
		if auditErr := p.auditor.CompleteRun(ctx, runID, store.RunFailed, result.Extracted, result.Classified, message); auditErr != nil {
			log.Printf("could not close pipeline run %s: %v", runID, auditErr)
		}
		return result, fmt.Errorf("%s stage failed: %w", stage, stageErr)
	}

	log.Printf("pipeline run %s: extracting", runID)
	result.Extracted, err = p.extraction.Run(ctx, limit)
	if err != nil {
		return fail("extraction", err)
	}

	log.Printf("pipeline run %s: classifying", runID)
	result.Classified, err = p.classification.Run(ctx)
	if err != nil {
		return fail("classification", err)
	}

	log.Printf("pipeline run %s: summarizing", runID)
	result.Summary, err = p.summary.Run(ctx, time.Now())
	if err != nil {
		return fail("summarization", err)
	}

	if err := p.auditor.CompleteRun(ctx, runID, store.RunCompleted, result.Extracted, result.Classified, ""); err != nil {
		log.Printf("could not close pipeline run %s: %v", runID, err)
	}
	log.Printf("pipeline run %s complete: %d extracted, %d classified", runID, result.Extracted, result.Classified)
	return result, nil
}
