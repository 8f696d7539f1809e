package types

import (
	"fmt"
	"time"
)

// DocumentType is the primary classification assigned to a document.
type DocumentType string

// Primary document categories
const (
	DocTypeProject   DocumentType = "project"
	DocTypeKnowledge DocumentType = "knowledge"
)

// SubCategory refines a DocumentType. Each value is only valid under one
// primary category; see AllowedSubcategories.
type SubCategory string

// Sub-categories for project documents
const (
	SubFeatureRequest SubCategory = "feature_request"
	SubBugReport      SubCategory = "bug_report"
	SubPlanning       SubCategory = "planning"
	SubResearch       SubCategory = "research"
)

// Sub-categories for knowledge documents
const (
	SubTutorial      SubCategory = "tutorial"
	SubReference     SubCategory = "reference"
	SubBestPractice  SubCategory = "best_practice"
	SubCaseStudy     SubCategory = "case_study"
	SubDocumentation SubCategory = "documentation"
)

// DocumentTypes lists every valid primary category.
func DocumentTypes() []DocumentType {
	return []DocumentType{DocTypeProject, DocTypeKnowledge}
}

// AllowedSubcategories returns the sub-category set valid under the given
// primary category. Unknown types return nil.
func AllowedSubcategories(t DocumentType) []SubCategory {
	switch t {
	case DocTypeProject:
		return []SubCategory{SubFeatureRequest, SubBugReport, SubPlanning, SubResearch}
	case DocTypeKnowledge:
		return []SubCategory{SubTutorial, SubReference, SubBestPractice, SubCaseStudy, SubDocumentation}
	default:
		return nil
	}
}

// ValidDocumentType reports whether s names a known primary category.
func ValidDocumentType(s string) bool {
	for _, t := range DocumentTypes() {
		if string(t) == s {
			return true
		}
	}
	return false
}

// ValidSubcategory reports whether sub belongs to the sub-category set of t.
func ValidSubcategory(t DocumentType, sub SubCategory) bool {
	for _, s := range AllowedSubcategories(t) {
		if s == sub {
			return true
		}
	}
	return false
}

// Classification is the categorization result for a single document.
// At most one Classification exists per document; re-classification
// replaces it wholesale.
type Classification struct {
	DocumentID      string       `json:"document_id"`
	DocumentType    DocumentType `json:"document_type"`
	SubCategory     SubCategory  `json:"sub_category"`
	ConfidenceScore float64      `json:"confidence_score"`
	Reason          string       `json:"classification_reason"`
	ClassifiedAt    time.Time    `json:"classified_at"`
}

// Validate checks the enum pairing and confidence range.
func (c *Classification) Validate() error {
	if !ValidDocumentType(string(c.DocumentType)) {
		return fmt.Errorf("unknown document type %q", c.DocumentType)
	}
	if !ValidSubcategory(c.DocumentType, c.SubCategory) {
		return fmt.Errorf("sub-category %q is not valid for document type %q", c.SubCategory, c.DocumentType)
	}
	if c.ConfidenceScore < 0.0 || c.ConfidenceScore > 1.0 {
		return fmt.Errorf("confidence score %.3f outside [0.0, 1.0]", c.ConfidenceScore)
	}
	return nil
}
