package dto

import (
	"time"

	"github.com/google/uuid"
)

type GenerateDocumentRequest struct {
	DocType       string   `json:"doc_type" validate:"required"`
	Summary       string   `json:"summary"`
	Requirements  string   `json:"requirements"`
	Style         string   `json:"style"`
	Feedback      []string `json:"feedback"`
	MaxIterations int      `json:"max_iterations" validate:"omitempty,min=1,max=10"`
}

type GenerateDocumentResponse struct {
	Status       string     `json:"status"`
	WorkflowId   uuid.UUID  `json:"workflow_id"`
	DocumentId   *uuid.UUID `json:"document_id,omitempty"`
	Content      string     `json:"content"`
	WordCount    int        `json:"word_count"`
	QualityScore float64    `json:"quality_score"`
	Iterations   int        `json:"iterations"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Degradations []string   `json:"degradations,omitempty"`
	Messages     []string   `json:"messages,omitempty"`
}

type WorkflowStatusResponse struct {
	Id             uuid.UUID              `json:"id"`
	DocumentId     *uuid.UUID             `json:"document_id,omitempty"`
	DocType        string                 `json:"doc_type"`
	Status         string                 `json:"status"`
	QualityScore   float64                `json:"quality_score"`
	IterationCount int                    `json:"iteration_count"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Telemetry      map[string]interface{} `json:"telemetry,omitempty"`
	StartedAt      time.Time              `json:"started_at"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
	Agents         []WorkflowAgentItem    `json:"agents,omitempty"`
}

type WorkflowAgentItem struct {
	AgentName string                 `json:"agent_name"`
	Status    string                 `json:"status"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type BuildStyleProfileRequest struct {
	DocTypes         []string `json:"doc_types" validate:"required,min=1"`
	MinFeedbackScore int      `json:"min_feedback_score" validate:"omitempty,min=1,max=5"`
}

type StyleProfileResponse struct {
	Status        string             `json:"status"`
	Tone          string             `json:"tone"`
	ToneAnalysis  map[string]float64 `json:"tone_analysis"`
	Terminology   map[string]float64 `json:"terminology"`
	HeadingStyle  string             `json:"heading_style"`
	DocumentCount int                `json:"document_count"`
	IsDefault     bool               `json:"is_default"`
	CacheHit      bool               `json:"cache_hit"`
}
