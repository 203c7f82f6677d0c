// FILE: pkg/vector/memory.go
// PURPOSE: Brute-force in-memory index used when pgvector is unavailable

package vector

import (
	"context"
	"sort"
	"sync"
)

// MemoryIndex holds documents in a map and scores every candidate on each
// search. Filters apply after scoring. A candidate missing a filtered metadata
// key passes the filter rather than being dropped.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		docs: make(map[string]Document),
	}
}

func (m *MemoryIndex) SupportsNativeFilter() bool {
	return false
}

func (m *MemoryIndex) Upsert(ctx context.Context, docs []Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range docs {
		m.docs[doc.ID] = doc
	}
	return nil
}

func (m *MemoryIndex) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func (m *MemoryIndex) Search(ctx context.Context, embedding []float32, limit int, filter Filter) ([]Match, error) {
	if limit <= 0 {
		limit = 5
	}

	m.mu.RLock()
	candidates := make([]Document, 0, len(m.docs))
	for _, doc := range m.docs {
		candidates = append(candidates, doc)
	}
	m.mu.RUnlock()

	matches := make([]Match, 0, len(candidates))
	for _, doc := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !matchesFilter(doc.Metadata, filter) {
			continue
		}
		matches = append(matches, Match{
			Document:   doc,
			Similarity: CosineSimilarity(embedding, doc.Embedding),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func matchesFilter(metadata map[string]interface{}, filter Filter) bool {
	if filter.IsZero() {
		return true
	}

	if len(filter.DocTypes) > 0 {
		if docType, ok := asString(metadata[MetaDocType]); ok {
			found := false
			for _, dt := range filter.DocTypes {
				if dt == docType {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}

	if filter.MinFeedbackScore > 0 {
		if score, ok := asInt(metadata[MetaFeedbackScore]); ok && score < filter.MinFeedbackScore {
			return false
		}
	}

	if filter.ApprovedOnly {
		if approved, ok := metadata[MetaApproved].(bool); ok && !approved {
			return false
		}
	}

	return true
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
