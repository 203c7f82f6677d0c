package retrieval

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"docgen-be/internal/pkg/logger"
	"docgen-be/pkg/docgen"
	"docgen-be/pkg/embedding"
	"docgen-be/pkg/vector"
)

// scriptedIndex replays a fixed queue of search results and records the
// filter passed on every call.
type scriptedIndex struct {
	responses [][]vector.Match
	filters   []vector.Filter
	native    bool
	err       error
}

func (s *scriptedIndex) Search(ctx context.Context, emb []float32, limit int, filter vector.Filter) ([]vector.Match, error) {
	s.filters = append(s.filters, filter)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return nil, nil
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	return next, nil
}

func (s *scriptedIndex) Upsert(ctx context.Context, docs []vector.Document) error { return nil }

func (s *scriptedIndex) SupportsNativeFilter() bool { return s.native }

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0, 0}},
	}, nil
}

func match(content string, similarity float64, metadata map[string]interface{}) vector.Match {
	return vector.Match{
		Document:   vector.Document{Content: content, Metadata: metadata},
		Similarity: similarity,
	}
}

func TestRetrieveRejectsEmptyQueryWithoutSearching(t *testing.T) {
	index := &scriptedIndex{native: true}
	embedder := &fakeEmbedder{}
	ranker := NewRanker(index, embedder, logger.NewNop(), 5, 20)

	result := ranker.Retrieve(context.Background(), "   ", "SRS", 0, 5)

	if result.Status != docgen.StatusError {
		t.Errorf("Status = %q, want %q", result.Status, docgen.StatusError)
	}
	if embedder.calls != 0 {
		t.Errorf("embedder calls = %d, want 0", embedder.calls)
	}
	if len(index.filters) != 0 {
		t.Errorf("index searches = %d, want 0", len(index.filters))
	}
}

func TestFusedScoreWeighting(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		metadata map[string]interface{}
		want     float64
	}{
		{"top relevance and feedback", 1.0, map[string]interface{}{"feedback_score": 5}, 1.0},
		{"missing feedback counts as neutral", 1.0, nil, 0.85},
		{"lowest feedback contributes nothing", 1.0, map[string]interface{}{"feedback_score": 1}, 0.7},
		{"feedback from float metadata", 0.5, map[string]interface{}{"feedback_score": 5.0}, 0.65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk := docgen.ScoredChunk{Content: "c", Metadata: tt.metadata, Score: tt.score}
			if got := FusedScore(chunk); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("FusedScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetrieveRanksByFusedScore(t *testing.T) {
	index := &scriptedIndex{
		native: true,
		responses: [][]vector.Match{{
			match("low feedback", 0.9, map[string]interface{}{"feedback_score": 1}),
			match("high feedback", 0.9, map[string]interface{}{"feedback_score": 5}),
		}},
	}
	ranker := NewRanker(index, &fakeEmbedder{}, logger.NewNop(), 5, 20)

	result := ranker.Retrieve(context.Background(), "ranking query terms", "", 0, 5)

	if result.Status != docgen.StatusSuccess {
		t.Fatalf("Status = %q, want success", result.Status)
	}
	if len(result.Chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(result.Chunks))
	}
	if result.Chunks[0].Content != "high feedback" {
		t.Errorf("top chunk = %q, want the higher-feedback chunk", result.Chunks[0].Content)
	}
}

func TestRetrieveFallsBackToUnfilteredSearch(t *testing.T) {
	index := &scriptedIndex{
		native: true,
		responses: [][]vector.Match{
			nil,
			{match("unfiltered hit", 0.8, nil)},
		},
	}
	ranker := NewRanker(index, &fakeEmbedder{}, logger.NewNop(), 5, 20)

	result := ranker.Retrieve(context.Background(), "fallback query", "SRS", 0, 5)

	if result.Status != docgen.StatusDegraded {
		t.Errorf("Status = %q, want %q", result.Status, docgen.StatusDegraded)
	}
	if len(index.filters) < 2 {
		t.Fatalf("searches = %d, want a filtered call plus an unfiltered retry", len(index.filters))
	}
	if index.filters[0].IsZero() {
		t.Error("first search ran without the doc type filter")
	}
	if !index.filters[1].IsZero() {
		t.Error("retry search still carried a filter")
	}
	if len(result.Chunks) != 1 || result.Chunks[0].Content != "unfiltered hit" {
		t.Errorf("chunks = %+v, want the unfiltered hit", result.Chunks)
	}
}

func TestRetrievePostFilterFailsOpenOnMissingFeedback(t *testing.T) {
	index := &scriptedIndex{
		native: false,
		responses: [][]vector.Match{{
			match("scored too low", 0.9, map[string]interface{}{"feedback_score": 2}),
			match("no feedback recorded", 0.9, nil),
			match("scored high", 0.9, map[string]interface{}{"feedback_score": 5}),
		}},
	}
	ranker := NewRanker(index, &fakeEmbedder{}, logger.NewNop(), 5, 20)

	result := ranker.Retrieve(context.Background(), "feedback filter query", "", 4, 5)

	if len(result.Chunks) != 2 {
		t.Fatalf("chunks = %d, want 2 (low score dropped, missing score kept)", len(result.Chunks))
	}
	for _, c := range result.Chunks {
		if c.Content == "scored too low" {
			t.Error("chunk below the minimum feedback score survived the filter")
		}
	}
}

func TestRetrieveBroadFallbackDeduplicatesByPrefix(t *testing.T) {
	shared := strings.Repeat("a", 100)
	index := &scriptedIndex{
		native: true,
		responses: [][]vector.Match{
			{match(shared+" original tail", 0.9, nil)},
			{
				match(shared+" different tail", 0.8, nil),
				match("genuinely new content", 0.7, nil),
			},
		},
	}
	ranker := NewRanker(index, &fakeEmbedder{}, logger.NewNop(), 5, 20)

	result := ranker.Retrieve(context.Background(), "one two three four five", "", 0, 5)

	if result.Status != docgen.StatusDegraded {
		t.Errorf("Status = %q, want degraded after the broad retry", result.Status)
	}
	if len(result.Chunks) != 2 {
		t.Fatalf("chunks = %d, want 2 (prefix duplicate dropped)", len(result.Chunks))
	}
	if result.Chunks[1].Content != "genuinely new content" {
		t.Errorf("appended chunk = %q, want the non-duplicate", result.Chunks[1].Content)
	}
}

func TestRetrieveSearchErrorYieldsErrorStatus(t *testing.T) {
	index := &scriptedIndex{native: true, err: errors.New("connection refused")}
	ranker := NewRanker(index, &fakeEmbedder{}, logger.NewNop(), 5, 20)

	result := ranker.Retrieve(context.Background(), "short", "", 0, 5)

	if result.Status != docgen.StatusError {
		t.Errorf("Status = %q, want %q", result.Status, docgen.StatusError)
	}
	if len(result.Chunks) != 0 {
		t.Errorf("chunks = %d, want 0", len(result.Chunks))
	}
}
