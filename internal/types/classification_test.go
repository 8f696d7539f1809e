package types

import (
	"testing"
	"time"
)

func TestAllowedSubcategories(t *testing.T) {
	project := AllowedSubcategories(DocTypeProject)
	if len(project) != 4 {
		t.Errorf("expected 4 project sub-categories, got %d", len(project))
	}

	knowledge := AllowedSubcategories(DocTypeKnowledge)
	if len(knowledge) != 5 {
		t.Errorf("expected 5 knowledge sub-categories, got %d", len(knowledge))
	}

	if got := AllowedSubcategories(DocumentType("unknown")); got != nil {
		t.Errorf("expected nil for unknown type, got %v", got)
	}

	// No sub-category may appear under both primary categories.
	seen := make(map[SubCategory]bool)
	for _, s := range project {
		seen[s] = true
	}
	for _, s := range knowledge {
		if seen[s] {
			t.Errorf("sub-category %q appears under both primary categories", s)
		}
	}
}

func TestValidSubcategory(t *testing.T) {
	tests := []struct {
		name    string
		docType DocumentType
		sub     SubCategory
		want    bool
	}{
		{"project feature request", DocTypeProject, SubFeatureRequest, true},
		{"project bug report", DocTypeProject, SubBugReport, true},
		{"knowledge tutorial", DocTypeKnowledge, SubTutorial, true},
		{"knowledge documentation", DocTypeKnowledge, SubDocumentation, true},
		{"tutorial under project", DocTypeProject, SubTutorial, false},
		{"planning under knowledge", DocTypeKnowledge, SubPlanning, false},
		{"unknown sub-category", DocTypeProject, SubCategory("misc"), false},
		{"unknown type", DocumentType("memo"), SubTutorial, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidSubcategory(tt.docType, tt.sub); got != tt.want {
				t.Errorf("ValidSubcategory(%q, %q) = %v, want %v", tt.docType, tt.sub, got, tt.want)
			}
		})
	}
}

func TestClassificationValidate(t *testing.T) {
	valid := Classification{
		DocumentID:      "doc-1",
		DocumentType:    DocTypeProject,
		SubCategory:     SubPlanning,
		ConfidenceScore: 0.92,
		Reason:          "roadmap with milestones",
		ClassifiedAt:    time.Now().UTC(),
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid classification rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Classification)
	}{
		{"unknown type", func(c *Classification) { c.DocumentType = "memo" }},
		{"mismatched sub-category", func(c *Classification) { c.SubCategory = SubTutorial }},
		{"confidence below range", func(c *Classification) { c.ConfidenceScore = -0.1 }},
		{"confidence above range", func(c *Classification) { c.ConfidenceScore = 1.2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
