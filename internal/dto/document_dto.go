package dto

import (
	"time"

	"github.com/google/uuid"
)

// PublishEmbedDocumentMessage is the payload queued for the embedding worker
// after a document row is written.
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}

type IngestDocumentRequest struct {
	Title         string `json:"title"`
	Content       string `json:"content" validate:"required"`
	DocType       string `json:"doc_type"`
	Approved      bool   `json:"approved"`
	FeedbackScore int    `json:"feedback_score"`
}

type IngestDocumentResponse struct {
	Id       uuid.UUID `json:"id"`
	DocType  string    `json:"doc_type"`
	Detected bool      `json:"doc_type_detected"`
}

type ShowDocumentResponse struct {
	Id            uuid.UUID              `json:"id"`
	Title         string                 `json:"title"`
	Content       string                 `json:"content"`
	DocType       string                 `json:"doc_type"`
	Summary       string                 `json:"summary,omitempty"`
	FeedbackScore int                    `json:"feedback_score"`
	Approved      bool                   `json:"approved"`
	StyleMetadata map[string]interface{} `json:"style_metadata,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     *time.Time             `json:"updated_at,omitempty"`
}

type ListDocumentsItem struct {
	Id            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	DocType       string     `json:"doc_type"`
	FeedbackScore int        `json:"feedback_score"`
	Approved      bool       `json:"approved"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type ListDocumentsResponse struct {
	Documents []ListDocumentsItem `json:"documents"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	PageSize  int                 `json:"page_size"`
}

// UpdateDocumentRequest replaces document fields. Empty fields are left
// untouched; a new Content re-chunks and re-embeds the document.
type UpdateDocumentRequest struct {
	Id      uuid.UUID `json:"-"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	DocType string    `json:"doc_type"`
}

// UpdateFeedbackRequest carries a raw score. Out-of-range values are clamped
// into the configured bounds by the service, never rejected.
type UpdateFeedbackRequest struct {
	Id    uuid.UUID `json:"-"`
	Score int       `json:"score" validate:"required"`
}

type UpdateFeedbackResponse struct {
	Id    uuid.UUID `json:"id"`
	Score int       `json:"score"`
}

type SearchChunksRequest struct {
	Query            string `json:"query" validate:"required"`
	DocType          string `json:"doc_type"`
	MinFeedbackScore int    `json:"min_feedback_score" validate:"omitempty,min=1,max=5"`
	TopK             int    `json:"top_k" validate:"omitempty,min=1,max=20"`
}

type SearchChunkItem struct {
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	DocumentTitle string  `json:"document_title,omitempty"`
	DocType       string  `json:"doc_type,omitempty"`
	FeedbackScore int     `json:"feedback_score,omitempty"`
}

type SearchChunksResponse struct {
	Status       string            `json:"status"`
	Chunks       []SearchChunkItem `json:"chunks"`
	TotalResults int               `json:"total_results"`
}
