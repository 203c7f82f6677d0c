package contract

import (
	"context"

	"docgen-be/internal/entity"
	"docgen-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChunk wraps a chunk with its cosine similarity (1.0 = identical) and
// the parent document fields retrieval ranking needs.
type ScoredChunk struct {
	Chunk         *entity.DocumentChunk
	Similarity    float64
	DocumentTitle string
	DocType       string
	FeedbackScore int
}

// ChunkSearchFilter narrows similarity search to a corpus slice. Zero values
// mean no constraint on that axis.
type ChunkSearchFilter struct {
	DocTypes         []string
	MinFeedbackScore int
	ApprovedOnly     bool
}

type DocumentChunkRepository interface {
	Create(ctx context.Context, chunk *entity.DocumentChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore runs nearest-neighbor search over chunk embeddings
	// joined against documents so the filter applies at query time.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, filter ChunkSearchFilter) ([]*ScoredChunk, error)
}
