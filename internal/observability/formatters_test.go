package observability

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/notion-insights/internal/store"
	"github.com/jonathan/notion-insights/internal/types"
)

func TestPrintProcessingStats(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProcessingStats(types.ProcessingStats{Total: 12, Extracted: 3, Classified: 8, Failed: 1})
	output := buf.String()

	assert.Contains(t, output, "PROCESSING STATUS")
	assert.Contains(t, output, "Total documents:  12")
	assert.Contains(t, output, "Classified:  8")
	assert.Contains(t, output, "Failed:      1")
}

func TestPrintWeeklySummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	summary := &types.WeeklySummary{
		WeekStart:      time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		WeekEnd:        time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC),
		TotalDocuments: 5,
		DocumentsByType: map[types.DocumentType]int{
			types.DocTypeProject:   3,
			types.DocTypeKnowledge: 2,
		},
		SummaryText: "A busy week.",
		KeyInsights: []string{"Mostly project work", "Two new references"},
	}

	p.PrintWeeklySummary(summary)
	output := buf.String()

	assert.Contains(t, output, "WEEKLY SUMMARY")
	assert.Contains(t, output, "2026-08-24 to 2026-08-30")
	assert.Contains(t, output, "project: 3")
	assert.Contains(t, output, "Mostly project work")
}

func TestPrintWeeklySummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintWeeklySummary(nil)

	assert.Empty(t, buf.String())
}

func TestPrintRuns(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	runs := []store.Run{
		{
			Status:          store.RunCompleted,
			ExtractedCount:  4,
			ClassifiedCount: 4,
			StartedAt:       time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC),
		},
		{
			Status:       store.RunFailed,
			ErrorMessage: "classification stage: oracle down",
			StartedAt:    time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
		},
	}

	p.PrintRuns(runs)
	output := buf.String()

	assert.Contains(t, output, "RECENT PIPELINE RUNS")
	assert.Contains(t, output, "extracted 4, classified 4")
	assert.Contains(t, output, "oracle down")
}

func TestPrintRuns_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRuns(nil)

	assert.Contains(t, buf.String(), "NO PIPELINE RUNS RECORDED")
}
