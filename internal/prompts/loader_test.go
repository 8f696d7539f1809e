package prompts

import (
	"strings"
	"testing"
)

func TestGet_KnownPrompts(t *testing.T) {
	tests := []struct {
		filename string
		key      string
		contains string
	}{
		{"classification.json", "system", "classification expert"},
		{"classification.json", "classify-document", "{{.Title}}"},
		{"summary.json", "system", "weekly summary reports"},
		{"summary.json", "weekly-report", "{{.TotalDocuments}}"},
	}

	for _, tt := range tests {
		t.Run(tt.filename+"/"+tt.key, func(t *testing.T) {
			prompt, err := Get(tt.filename, tt.key)
			if err != nil {
				t.Fatalf("Get(%q, %q) error: %v", tt.filename, tt.key, err)
			}
			if !strings.Contains(prompt, tt.contains) {
				t.Errorf("prompt %s/%s missing %q", tt.filename, tt.key, tt.contains)
			}
		})
	}
}

func TestGet_Missing(t *testing.T) {
	if _, err := Get("classification.json", "nope"); err == nil {
		t.Error("expected error for unknown key")
	}
	if _, err := Get("missing.json", "system"); err == nil {
		t.Error("expected error for unknown file")
	}
}

func TestFormat(t *testing.T) {
	template := "Title: {{.Title}}, Content: {{.Content}}"
	got := Format(template, map[string]string{
		"Title":   "Weekly Plan",
		"Content": "body",
	})
	want := "Title: Weekly Plan, Content: body"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormat_UnreplacedPlaceholderSurvives(t *testing.T) {
	got := Format("{{.Title}} {{.Other}}", map[string]string{"Title": "x"})
	if got != "x {{.Other}}" {
		t.Errorf("Format() = %q", got)
	}
}
