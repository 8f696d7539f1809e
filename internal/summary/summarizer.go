// Package summary builds the weekly narrative report: it collects the
// classified documents of one Monday–Sunday window, aggregates their
// category counts, and asks the LLM for a narrative plus key insights.
package summary

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
	"github.com/jonathan/notion-insights/internal/store"
	"github.com/jonathan/notion-insights/internal/types"
)

const (
	// maxDetailLines bounds how many per-document lines go into the prompt.
	maxDetailLines = 20
	// maxExcerptDocs and maxExcerptChars bound the content excerpts.
	maxExcerptDocs  = 5
	maxExcerptChars = 500

	summaryTemperature     = 0.3
	summaryMaxOutputTokens = 1000
)

// Canned zero-activity report. Keeps empty weeks deterministic and avoids
// an LLM call that has nothing to analyze.
const (
	emptyWeekSummary = "No documents were processed during this week. The pipeline ran but found no classified content in the window."
	emptyWeekInsight = "No document activity recorded this week."
)

// ResponseError wraps a rejected LLM response together with the raw text.
type ResponseError struct {
	Raw   string
	Cause error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("invalid summary response: %v", e.Cause)
}

func (e *ResponseError) Unwrap() error {
	return e.Cause
}

// Repository is the slice of the store the summarizer uses.
type Repository interface {
	ClassifiedInWindow(ctx context.Context, start, end time.Time) ([]store.ClassifiedDocument, error)
	UpsertWeeklySummary(ctx context.Context, summary *types.WeeklySummary) error
}

// Summarizer runs the summarization stage.
type Summarizer struct {
	llm   llm.Client
	store Repository
}

// New creates a summarizer.
func New(client llm.Client, store Repository) *Summarizer {
	return &Summarizer{llm: client, store: store}
}

// WeekBounds returns the Monday 00:00:00 and Sunday 23:59:59 (UTC) enclosing
// the reference time. A zero reference means now.
func WeekBounds(ref time.Time) (start, end time.Time) {
	if ref.IsZero() {
		ref = time.Now()
	}
	ref = ref.UTC()

	// time.Weekday puts Sunday at 0; shift so Monday is day 0.
	daysSinceMonday := (int(ref.Weekday()) + 6) % 7
	monday := ref.AddDate(0, 0, -daysSinceMonday)

	start = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 0, 6).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	return start, end
}

// Collect returns the classified documents of the window, most recent first.
func (s *Summarizer) Collect(ctx context.Context, start, end time.Time) ([]store.ClassifiedDocument, error) {
	return s.store.ClassifiedInWindow(ctx, start, end)
}

// Aggregate counts the pairs by category and sub-category.
func Aggregate(pairs []store.ClassifiedDocument) (byType map[types.DocumentType]int, bySub map[types.SubCategory]int) {
	byType = make(map[types.DocumentType]int)
	bySub = make(map[types.SubCategory]int)
	for _, pair := range pairs {
		byType[pair.Classification.DocumentType]++
		bySub[pair.Classification.SubCategory]++
	}
	return byType, bySub
}

// summaryResponse mirrors the JSON shape the model is instructed to return.
type summaryResponse struct {
	SummaryText string   `json:"summary_text"`
	KeyInsights []string `json:"key_insights"`
}

// Generate builds the WeeklySummary for a window. A window with no
// classified documents short-circuits to the canned zero-activity report
// without calling the LLM.
func (s *Summarizer) Generate(ctx context.Context, start, end time.Time) (*types.WeeklySummary, error) {
	pairs, err := s.Collect(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to collect classified documents: %w", err)
	}

	summary := &types.WeeklySummary{
		WeekStart:      start,
		WeekEnd:        end,
		TotalDocuments: len(pairs),
		GeneratedAt:    time.Now().UTC(),
	}
	summary.DocumentsByType, summary.DocumentsBySub = Aggregate(pairs)

	if len(pairs) == 0 {
		summary.SummaryText = emptyWeekSummary
		summary.KeyInsights = []string{emptyWeekInsight}
		return summary, nil
	}

	text, insights, err := s.generateNarrative(ctx, summary, pairs)
	if err != nil {
		return nil, err
	}
	summary.SummaryText = text
	summary.KeyInsights = insights
	return summary, nil
}

// generateNarrative calls the LLM with the aggregated week data and
// validates the structured response.
func (s *Summarizer) generateNarrative(ctx context.Context, summary *types.WeeklySummary, pairs []store.ClassifiedDocument) (string, []string, error) {
	byType, _ := json.Marshal(summary.DocumentsByType)
	bySub, _ := json.Marshal(summary.DocumentsBySub)

	userPrompt := prompts.Format(
		prompts.MustGet("summary.json", "weekly-report"),
		map[string]string{
			"TotalDocuments":         fmt.Sprintf("%d", summary.TotalDocuments),
			"DocumentsByType":        string(byType),
			"DocumentsBySubcategory": string(bySub),
			"DocumentDetails":        detailLines(pairs),
			"ContentExcerpts":        contentExcerpts(pairs),
		},
	)
	systemPrompt := prompts.MustGet("summary.json", "system")

	raw, err := s.llm.GenerateJSON(ctx, systemPrompt, userPrompt, llm.GenerateOptions{
		Tier:            llm.TierStandard,
		Temperature:     summaryTemperature,
		MaxOutputTokens: summaryMaxOutputTokens,
	})
	if err != nil {
		return "", nil, fmt.Errorf("summary call failed: %w", err)
	}

	if err := schemas.Validate(schemas.SummaryResponse, raw); err != nil {
		return "", nil, &ResponseError{Raw: raw, Cause: err}
	}

	var resp summaryResponse
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&resp); err != nil {
		return "", nil, &ResponseError{Raw: raw, Cause: err}
	}
	return resp.SummaryText, resp.KeyInsights, nil
}

// detailLines renders one "title (type/sub, confidence)" line per document,
// capped at maxDetailLines.
func detailLines(pairs []store.ClassifiedDocument) string {
	n := len(pairs)
	if n > maxDetailLines {
		n = maxDetailLines
	}

	lines := make([]string, 0, n)
	for _, pair := range pairs[:n] {
		lines = append(lines, fmt.Sprintf("- %s (%s/%s, confidence %.2f)",
			pair.Document.Title,
			pair.Classification.DocumentType, pair.Classification.SubCategory,
			pair.Classification.ConfidenceScore))
	}
	return strings.Join(lines, "\n")
}

// contentExcerpts renders truncated content of the first few documents.
func contentExcerpts(pairs []store.ClassifiedDocument) string {
	n := len(pairs)
	if n > maxExcerptDocs {
		n = maxExcerptDocs
	}

	var sb strings.Builder
	for i, pair := range pairs[:n] {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		content := pair.Document.Content
		if len(content) > maxExcerptChars {
			content = llm.TruncateText(content, maxExcerptChars) + "..."
		}
		sb.WriteString(fmt.Sprintf("%s:\n%s", pair.Document.Title, content))
	}
	return sb.String()
}

// Persist writes the summary through the store, replacing any existing
// summary for the same window.
func (s *Summarizer) Persist(ctx context.Context, summary *types.WeeklySummary) error {
	return s.store.UpsertWeeklySummary(ctx, summary)
}

// Run generates and persists the summary for the week enclosing ref.
func (s *Summarizer) Run(ctx context.Context, ref time.Time) (*types.WeeklySummary, error) {
	start, end := WeekBounds(ref)

	summary, err := s.Generate(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if err := s.Persist(ctx, summary); err != nil {
		return nil, err
	}
	log.Printf("weekly summary stored for %s to %s (%d documents)",
		start.Format("2006-01-02"), end.Format("2006-01-02"), summary.TotalDocuments)
	return summary, nil
}
