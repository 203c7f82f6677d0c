// FILE: pkg/docgen/docgen.go
// PURPOSE: Shared types for the document generation pipeline

package docgen

// Status is the explicit outcome of a pipeline component. Degraded means the
// component produced a usable result through a fallback path; tests and
// telemetry can tell "fell back" apart from "succeeded".
type Status string

const (
	StatusSuccess  Status = "success"
	StatusDegraded Status = "degraded"
	StatusError    Status = "error"
)

// ScoredChunk is the unit of retrieved prior content. Score is relevance in
// [0,1]; 0.5 is substituted when the backend cannot supply one.
type ScoredChunk struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
	Score    float64                `json:"score"`
}

// FeedbackScore reads the 1..5 feedback rating out of chunk metadata.
// Missing or unparseable values report ok=false so callers can fail open.
func (c ScoredChunk) FeedbackScore() (int, bool) {
	switch v := c.Metadata["feedback_score"].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// DocType reads the document type label out of chunk metadata.
func (c ScoredChunk) DocType() (string, bool) {
	s, ok := c.Metadata["doc_type"].(string)
	return s, ok
}
