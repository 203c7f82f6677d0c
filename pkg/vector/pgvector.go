// FILE: pkg/vector/pgvector.go
// PURPOSE: pgvector-backed index over the document_chunks table

package vector

import (
	"context"
	"strconv"

	"docgen-be/internal/repository/contract"
)

// PgvectorIndex delegates to the chunk repository so similarity and filtering
// both run inside Postgres.
type PgvectorIndex struct {
	chunks contract.DocumentChunkRepository
}

func NewPgvectorIndex(chunks contract.DocumentChunkRepository) *PgvectorIndex {
	return &PgvectorIndex{chunks: chunks}
}

func (p *PgvectorIndex) SupportsNativeFilter() bool {
	return true
}

// Upsert is a no-op. Chunks reach Postgres through the ingestion service and
// its unit of work; the index only reads.
func (p *PgvectorIndex) Upsert(ctx context.Context, docs []Document) error {
	return nil
}

func (p *PgvectorIndex) Search(ctx context.Context, embedding []float32, limit int, filter Filter) ([]Match, error) {
	scored, err := p.chunks.SearchSimilarWithScore(ctx, embedding, limit, contract.ChunkSearchFilter{
		DocTypes:         filter.DocTypes,
		MinFeedbackScore: filter.MinFeedbackScore,
		ApprovedOnly:     filter.ApprovedOnly,
	})
	if err != nil {
		return nil, err
	}

	matches := make([]Match, len(scored))
	for i, sc := range scored {
		matches[i] = Match{
			Document: Document{
				ID:        sc.Chunk.Id.String(),
				Content:   sc.Chunk.Content,
				Embedding: sc.Chunk.Embedding,
				Metadata: map[string]interface{}{
					MetaDocumentId:    sc.Chunk.DocumentId.String(),
					MetaDocumentTitle: sc.DocumentTitle,
					MetaDocType:       sc.DocType,
					MetaFeedbackScore: sc.FeedbackScore,
					MetaChunkIndex:    sc.Chunk.ChunkIndex,
				},
			},
			Similarity: sc.Similarity,
		}
	}
	return matches, nil
}

// ChunkKey builds a stable memory-index ID for a chunk of a document.
func ChunkKey(documentId string, chunkIndex int) string {
	return documentId + ":" + strconv.Itoa(chunkIndex)
}
