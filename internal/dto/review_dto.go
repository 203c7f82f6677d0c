package dto

type ReviewDocumentRequest struct {
	Content    string   `json:"content" validate:"required"`
	DocType    string   `json:"doc_type" validate:"required"`
	Feedback   []string `json:"feedback"`
	ReviewType string   `json:"review_type" validate:"omitempty,oneof=formatting feedback both"`
}

type ReviewDocumentResponse struct {
	Status          string   `json:"status"`
	ImprovedContent string   `json:"improved_content"`
	ChangesMade     []string `json:"changes_made"`
	DiffSummary     []string `json:"diff_summary,omitempty"`
	DiffLines       []string `json:"diff_lines,omitempty"`
	WordCountBefore int      `json:"word_count_before"`
	WordCountAfter  int      `json:"word_count_after"`
}

type ComplianceCheckRequest struct {
	Content string `json:"content" validate:"required"`
	DocType string `json:"doc_type" validate:"required"`
}

type ComplianceCheckResponse struct {
	Compliant        bool     `json:"compliant"`
	RequiredSections []string `json:"required_sections"`
	MissingSections  []string `json:"missing_sections,omitempty"`
	Issues           []string `json:"issues,omitempty"`
	WordCount        int      `json:"word_count"`
}

type ExportDocumentRequest struct {
	Content  string `json:"content" validate:"required"`
	Format   string `json:"format" validate:"omitempty,oneof=md pdf docx latex"`
	Filename string `json:"filename"`
}
