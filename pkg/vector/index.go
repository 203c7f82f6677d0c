// FILE: pkg/vector/index.go
// PURPOSE: Similarity index abstraction with a SQL-backed and an in-memory variant

package vector

import (
	"context"
	"math"
)

// Metadata keys recognized by Filter matching.
const (
	MetaDocumentId    = "document_id"
	MetaDocumentTitle = "document_title"
	MetaDocType       = "doc_type"
	MetaFeedbackScore = "feedback_score"
	MetaApproved      = "approved"
	MetaChunkIndex    = "chunk_index"
)

type Document struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  map[string]interface{}
}

type Match struct {
	Document   Document
	Similarity float64 // cosine similarity, 1.0 = identical
}

// Filter narrows a search to a corpus slice. Zero values mean no constraint.
type Filter struct {
	DocTypes         []string
	MinFeedbackScore int
	ApprovedOnly     bool
}

func (f Filter) IsZero() bool {
	return len(f.DocTypes) == 0 && f.MinFeedbackScore == 0 && !f.ApprovedOnly
}

// Index is the backend contract. Both variants are selected once at startup;
// callers never branch on the backend at query time.
type Index interface {
	Search(ctx context.Context, embedding []float32, limit int, filter Filter) ([]Match, error)
	Upsert(ctx context.Context, docs []Document) error
	// SupportsNativeFilter reports whether the backend applies Filter inside
	// the query itself rather than post-filtering candidates.
	SupportsNativeFilter() bool
}

// CosineSimilarity returns the cosine of the angle between two vectors, or 0
// for mismatched or zero-magnitude inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
