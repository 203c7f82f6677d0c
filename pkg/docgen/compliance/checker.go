// FILE: pkg/docgen/compliance/checker.go
// PURPOSE: Required-section and minimum-length validation of drafts

package compliance

import "strings"

const MinWordCountDefault = 500

var sectionRequirements = map[string][]string{
	"SRS":       {"Introduction", "Requirements", "Specifications"},
	"SOW":       {"Scope", "Deliverables", "Timeline"},
	"Proposal":  {"Overview", "Approach", "Budget"},
	"Technical": {"Architecture", "Implementation", "API"},
	"Business":  {"Executive Summary", "Market Analysis", "Financial"},
}

var genericSections = []string{"Introduction", "Content", "Conclusion"}

type CheckResult struct {
	Compliant       bool     `json:"compliant"`
	MissingSections []string `json:"missing_sections"`
	Issues          []string `json:"issues"`
}

// Checker is a pure validator; it holds only its length threshold.
type Checker struct {
	minWordCount int
}

func NewChecker(minWordCount int) *Checker {
	if minWordCount <= 0 {
		minWordCount = MinWordCountDefault
	}
	return &Checker{minWordCount: minWordCount}
}

// RequiredSections returns the checklist for a document type, defaulting to a
// generic three-section list for unknown types.
func RequiredSections(docType string) []string {
	if sections, ok := sectionRequirements[docType]; ok {
		return sections
	}
	return genericSections
}

// Check treats a section as present when its name appears case-insensitively
// anywhere in the content. No structural parsing.
func (c *Checker) Check(docType, content string) CheckResult {
	result := CheckResult{
		Compliant:       true,
		MissingSections: []string{},
		Issues:          []string{},
	}

	lower := strings.ToLower(content)
	for _, section := range RequiredSections(docType) {
		if !strings.Contains(lower, strings.ToLower(section)) {
			result.MissingSections = append(result.MissingSections, section)
			result.Compliant = false
		}
	}

	if len(strings.Fields(content)) < c.minWordCount {
		result.Compliant = false
		result.Issues = append(result.Issues, "Document too short - likely incomplete or truncated")
	}

	return result
}
