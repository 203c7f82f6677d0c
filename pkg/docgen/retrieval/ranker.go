// FILE: pkg/docgen/retrieval/ranker.go
// PURPOSE: Similarity retrieval with score fusion and graceful degradation

package retrieval

import (
	"context"
	"sort"
	"strings"

	"docgen-be/internal/pkg/logger"
	"docgen-be/pkg/docgen"
	"docgen-be/pkg/embedding"
	"docgen-be/pkg/vector"
)

const (
	relevanceWeight = 0.7
	feedbackWeight  = 0.3
	// relevance substituted when the backend gives no usable score
	defaultRelevance = 0.5
	// neutral feedback assumed when a chunk carries no parseable score
	neutralFeedback = 3
	dedupPrefixLen  = 100
)

type Result struct {
	Status       docgen.Status        `json:"status"`
	Reason       string               `json:"reason,omitempty"`
	Chunks       []docgen.ScoredChunk `json:"chunks"`
	TotalResults int                  `json:"total_results"`
}

// Ranker turns a text query into a ranked list of context chunks. It owns the
// filter/fallback chain; the index variant underneath is fixed at startup.
type Ranker struct {
	index       vector.Index
	embedder    embedding.EmbeddingProvider
	log         logger.ILogger
	topKDefault int
	searchKCap  int
}

func NewRanker(index vector.Index, embedder embedding.EmbeddingProvider, log logger.ILogger, topKDefault, searchKCap int) *Ranker {
	if topKDefault <= 0 {
		topKDefault = 5
	}
	if searchKCap <= 0 {
		searchKCap = 20
	}
	return &Ranker{
		index:       index,
		embedder:    embedder,
		log:         log,
		topKDefault: topKDefault,
		searchKCap:  searchKCap,
	}
}

// Retrieve never returns an error; failures surface as Status values. Empty
// queries are rejected before any backend call.
func (r *Ranker) Retrieve(ctx context.Context, query, docType string, minFeedbackScore, topK int) Result {
	if strings.TrimSpace(query) == "" {
		return Result{Status: docgen.StatusError, Reason: "empty query", Chunks: []docgen.ScoredChunk{}}
	}
	if topK <= 0 {
		topK = r.topKDefault
	}

	searchK := topK * 2
	if searchK > r.searchKCap {
		searchK = r.searchKCap
	}

	queryEmbedding, err := r.embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		r.log.Error("retrieval", "Query embedding failed", map[string]interface{}{"error": err.Error()})
		return Result{Status: docgen.StatusError, Reason: "embedding unavailable", Chunks: []docgen.ScoredChunk{}}
	}
	embedded := queryEmbedding.Embedding.Values

	filter := vector.Filter{MinFeedbackScore: minFeedbackScore}
	if docType != "" {
		filter.DocTypes = []string{docType}
	}

	degraded := false

	matches := r.search(ctx, embedded, searchK, filter)

	// Graceful degradation: retry the same query with no filter at all
	if len(matches) == 0 {
		matches = r.search(ctx, embedded, searchK, vector.Filter{})
		if len(matches) > 0 {
			degraded = true
			r.log.Warn("retrieval", "Filtered search empty, using unfiltered results", map[string]interface{}{
				"doc_type": docType,
				"count":    len(matches),
			})
		}
	}

	chunks := toChunks(matches)

	// The fallback index cannot filter natively, and the unfiltered retry
	// bypasses filters on both variants.
	if !r.index.SupportsNativeFilter() || degraded {
		chunks = filterByFeedback(chunks, minFeedbackScore)
		chunks = filterByDocType(chunks, docType)
	}

	chunks = fuseAndRank(chunks)
	if len(chunks) > topK {
		chunks = chunks[:topK]
	}

	// Diversity fallback: thin results on a long query get one broad retry
	// using just the leading words.
	words := strings.Fields(query)
	if len(chunks) < 2 && len(words) > 3 {
		broad := r.search(ctx, r.embedText(strings.Join(words[:3], " ")), searchK, vector.Filter{})
		if added := appendNew(chunks, toChunks(broad), topK); len(added) > len(chunks) {
			chunks = added
			degraded = true
		}
	}

	if len(chunks) == 0 {
		return Result{Status: docgen.StatusError, Reason: "no results", Chunks: []docgen.ScoredChunk{}}
	}

	status := docgen.StatusSuccess
	reason := ""
	if degraded {
		status = docgen.StatusDegraded
		reason = "filter fallback used"
	}
	return Result{Status: status, Reason: reason, Chunks: chunks, TotalResults: len(chunks)}
}

// search absorbs backend errors into an empty result so every stage of the
// fallback chain stays non-fatal.
func (r *Ranker) search(ctx context.Context, embedded []float32, k int, filter vector.Filter) []vector.Match {
	if len(embedded) == 0 {
		return nil
	}
	matches, err := r.index.Search(ctx, embedded, k, filter)
	if err != nil {
		r.log.Warn("retrieval", "Similarity search failed", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return matches
}

func (r *Ranker) embedText(text string) []float32 {
	resp, err := r.embedder.Generate(text, "RETRIEVAL_QUERY")
	if err != nil {
		return nil
	}
	return resp.Embedding.Values
}

func toChunks(matches []vector.Match) []docgen.ScoredChunk {
	chunks := make([]docgen.ScoredChunk, 0, len(matches))
	for _, m := range matches {
		score := m.Similarity
		if score <= 0 {
			score = defaultRelevance
		}
		metadata := m.Document.Metadata
		if metadata == nil {
			metadata = map[string]interface{}{}
		}
		chunks = append(chunks, docgen.ScoredChunk{
			Content:  m.Document.Content,
			Metadata: metadata,
			Score:    score,
		})
	}
	return chunks
}

// filterByFeedback drops chunks below the minimum score. Chunks with no
// parseable score pass (fail-open).
func filterByFeedback(chunks []docgen.ScoredChunk, minScore int) []docgen.ScoredChunk {
	if minScore <= 0 {
		return chunks
	}
	kept := chunks[:0:0]
	for _, c := range chunks {
		if score, ok := c.FeedbackScore(); ok && score < minScore {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func filterByDocType(chunks []docgen.ScoredChunk, docType string) []docgen.ScoredChunk {
	if docType == "" {
		return chunks
	}
	kept := chunks[:0:0]
	for _, c := range chunks {
		if dt, ok := c.DocType(); ok && dt != docType {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// fuseAndRank reranks by 0.7 * relevance + 0.3 * normalized feedback, where
// feedback 1..5 maps onto 0..1 and missing feedback counts as neutral (3).
// The sort is stable so ties keep their prior relative order.
func fuseAndRank(chunks []docgen.ScoredChunk) []docgen.ScoredChunk {
	ranked := make([]docgen.ScoredChunk, len(chunks))
	copy(ranked, chunks)
	sort.SliceStable(ranked, func(i, j int) bool {
		return FusedScore(ranked[i]) > FusedScore(ranked[j])
	})
	return ranked
}

// FusedScore combines relevance and normalized feedback into one rank score.
func FusedScore(c docgen.ScoredChunk) float64 {
	feedback := neutralFeedback
	if score, ok := c.FeedbackScore(); ok {
		feedback = score
	}
	normalized := float64(feedback-1) / 4.0
	return relevanceWeight*c.Score + feedbackWeight*normalized
}

// appendNew merges fallback chunks into base, deduplicating by content prefix,
// until limit is reached.
func appendNew(base, extra []docgen.ScoredChunk, limit int) []docgen.ScoredChunk {
	seen := make(map[string]bool, len(base))
	for _, c := range base {
		seen[contentKey(c.Content)] = true
	}
	merged := base
	for _, c := range extra {
		if len(merged) >= limit {
			break
		}
		key := contentKey(c.Content)
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, c)
	}
	return merged
}

func contentKey(content string) string {
	runes := []rune(content)
	if len(runes) > dedupPrefixLen {
		runes = runes[:dedupPrefixLen]
	}
	return string(runes)
}
