// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/notion-insights/internal/store"
	"github.com/jonathan/notion-insights/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProcessingStats outputs the per-status document counts.
func (p *Printer) PrintProcessingStats(stats types.ProcessingStats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total documents:  %d\n\n", stats.Total))
	sb.WriteString(fmt.Sprintf("Extracted:   %d\n", stats.Extracted))
	sb.WriteString(fmt.Sprintf("Classified:  %d\n", stats.Classified))
	sb.WriteString(fmt.Sprintf("Failed:      %d", stats.Failed))

	p.printBox("PROCESSING STATUS", sb.String())
}

// PrintWeeklySummary outputs a human-readable view of the weekly report.
func (p *Printer) PrintWeeklySummary(summary *types.WeeklySummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Week:  %s to %s\n",
		summary.WeekStart.Format("2006-01-02"), summary.WeekEnd.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Total: %d documents\n", summary.TotalDocuments))

	if len(summary.DocumentsByType) > 0 {
		sb.WriteString("\nBy type:\n")
		for _, docType := range types.DocumentTypes() {
			if count, ok := summary.DocumentsByType[docType]; ok {
				sb.WriteString(fmt.Sprintf("  • %s: %d\n", docType, count))
			}
		}
	}

	if len(summary.KeyInsights) > 0 {
		sb.WriteString("\nKey Insights:\n")
		count := min(len(summary.KeyInsights), maxItemsToShow)
		for i := 0; i < count; i++ {
			insight := summary.KeyInsights[i]
			if len(insight) > 50 {
				insight = insight[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", insight))
		}
		if len(summary.KeyInsights) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(summary.KeyInsights)-maxItemsToShow))
		}
	}

	p.printBox("WEEKLY SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRuns outputs the recent pipeline runs.
func (p *Printer) PrintRuns(runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO PIPELINE RUNS RECORDED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	count := min(len(runs), maxItemsToShow)
	for i := 0; i < count; i++ {
		run := runs[i]
		sb.WriteString(fmt.Sprintf("%s  %s\n", run.StartedAt.Format("2006-01-02 15:04"), run.Status))
		sb.WriteString(fmt.Sprintf("  extracted %d, classified %d\n", run.ExtractedCount, run.ClassifiedCount))
		if run.ErrorMessage != "" {
			message := run.ErrorMessage
			if len(message) > 45 {
				message = message[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", message))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(runs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more runs", len(runs)-maxItemsToShow))
	}

	p.printBox("RECENT PIPELINE RUNS", strings.TrimSuffix(sb.String(), "\n"))
}
