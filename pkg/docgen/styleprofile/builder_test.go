package styleprofile

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"docgen-be/internal/entity"
	"docgen-be/internal/pkg/logger"
	"docgen-be/internal/repository/specification"
	"docgen-be/pkg/cache"
	"docgen-be/pkg/docgen"

	"github.com/google/uuid"
)

type fakeDocumentRepo struct {
	docs     []*entity.Document
	err      error
	findAlls int
}

func (f *fakeDocumentRepo) Create(ctx context.Context, doc *entity.Document) error { return nil }
func (f *fakeDocumentRepo) Update(ctx context.Context, doc *entity.Document) error { return nil }
func (f *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error         { return nil }
func (f *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	return nil, nil
}
func (f *fakeDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	f.findAlls++
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}
func (f *fakeDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.docs)), nil
}
func (f *fakeDocumentRepo) UpdateFeedbackScore(ctx context.Context, id uuid.UUID, score int) error {
	return nil
}

type fakeProfileRepo struct {
	created []*entity.StyleProfile
	err     error
}

func (f *fakeProfileRepo) Create(ctx context.Context, profile *entity.StyleProfile) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, profile)
	return nil
}
func (f *fakeProfileRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StyleProfile, error) {
	return nil, nil
}
func (f *fakeProfileRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StyleProfile, error) {
	return nil, nil
}

func sampleDocument(content string, feedback int) *entity.Document {
	return &entity.Document{
		Id:            uuid.New(),
		Title:         "sample",
		Content:       content,
		DocType:       "SRS",
		FeedbackScore: feedback,
		Approved:      true,
	}
}

func newTestBuilder(docs *fakeDocumentRepo, profiles *fakeProfileRepo) *Builder {
	return NewBuilder(docs, profiles, cache.NewTTLCache(5*time.Minute, 10*time.Minute), 5*time.Minute, logger.NewNop())
}

func TestCacheKeyOrderIndependent(t *testing.T) {
	a := CacheKey([]string{"SOW", "SRS"}, 4)
	b := CacheKey([]string{"SRS", "SOW"}, 4)
	if a != b {
		t.Errorf("CacheKey differs by input order: %q vs %q", a, b)
	}
	if a != "SOW,SRS|4" {
		t.Errorf("CacheKey = %q, want %q", a, "SOW,SRS|4")
	}
}

func TestBuildCachesWithinFreshnessWindow(t *testing.T) {
	docs := &fakeDocumentRepo{docs: []*entity.Document{
		sampleDocument("# Title\nThe system architecture shall define requirements.", 5),
	}}
	builder := newTestBuilder(docs, &fakeProfileRepo{})

	first := builder.Build(context.Background(), []string{"SRS"}, 3)
	second := builder.Build(context.Background(), []string{"SRS"}, 3)

	if first.CacheHit {
		t.Error("first build reported a cache hit")
	}
	if !second.CacheHit {
		t.Error("second build missed the cache")
	}
	if docs.findAlls != 1 {
		t.Errorf("corpus queries = %d, want 1", docs.findAlls)
	}
	if second.Profile.Tone != first.Profile.Tone {
		t.Errorf("cached tone = %q, want %q", second.Profile.Tone, first.Profile.Tone)
	}
}

func TestBuildDistinctKeysQuerySeparately(t *testing.T) {
	docs := &fakeDocumentRepo{}
	builder := newTestBuilder(docs, &fakeProfileRepo{})

	builder.Build(context.Background(), []string{"SRS"}, 3)
	builder.Build(context.Background(), []string{"SOW"}, 3)

	if docs.findAlls != 2 {
		t.Errorf("corpus queries = %d, want 2 for distinct cache keys", docs.findAlls)
	}
}

func TestBuildEmptyCorpusReturnsDefault(t *testing.T) {
	builder := newTestBuilder(&fakeDocumentRepo{}, &fakeProfileRepo{})

	result := builder.Build(context.Background(), []string{"SRS"}, 3)

	if result.Status != docgen.StatusSuccess {
		t.Errorf("Status = %q, want success", result.Status)
	}
	if !result.Profile.IsDefault {
		t.Error("empty corpus did not produce the default profile")
	}
	if result.Profile.Tone != "professional" || result.Profile.HeadingStyle != "atx" {
		t.Errorf("default profile = %q/%q, want professional/atx", result.Profile.Tone, result.Profile.HeadingStyle)
	}
	if result.DocumentCount != 0 {
		t.Errorf("DocumentCount = %d, want 0", result.DocumentCount)
	}
}

func TestBuildCorpusErrorDegradesToDefault(t *testing.T) {
	docs := &fakeDocumentRepo{err: errors.New("connection refused")}
	builder := newTestBuilder(docs, &fakeProfileRepo{})

	result := builder.Build(context.Background(), []string{"SRS"}, 3)

	if result.Status != docgen.StatusDegraded {
		t.Errorf("Status = %q, want %q", result.Status, docgen.StatusDegraded)
	}
	if result.Profile == nil || !result.Profile.IsDefault {
		t.Error("degraded build did not fall back to the default profile")
	}
}

func TestBuildPersistFailureIsNonFatal(t *testing.T) {
	docs := &fakeDocumentRepo{docs: []*entity.Document{
		sampleDocument("The system architecture and database interface.", 4),
	}}
	profiles := &fakeProfileRepo{err: errors.New("insert failed")}
	builder := newTestBuilder(docs, profiles)

	result := builder.Build(context.Background(), []string{"SRS"}, 3)

	if result.Status != docgen.StatusDegraded {
		t.Errorf("Status = %q, want degraded when persistence fails", result.Status)
	}
	if result.Profile == nil || result.Profile.IsDefault {
		t.Error("computed profile was discarded on persistence failure")
	}
}

func TestAnalyzeToneDensity(t *testing.T) {
	tests := []struct {
		name string
		text string
		tone string
	}{
		{
			"technical vocabulary dominates",
			"The system architecture uses a database with an api interface and a deployment protocol.",
			"technical",
		},
		{
			"formal vocabulary dominates",
			"The contractor shall deliver and must comply, therefore work will proceed accordingly and furthermore on schedule.",
			"formal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := analyzeTone(tt.text)
			if got := dominantKey(scores, "professional"); got != tt.tone {
				t.Errorf("dominant tone = %q, want %q (scores %v)", got, tt.tone, scores)
			}
		})
	}
}

func TestAnalyzeToneEmptyContentIsNeutral(t *testing.T) {
	scores := analyzeTone("")
	for tone, score := range scores {
		if score != 0.5 {
			t.Errorf("tone %q = %v, want 0.5", tone, score)
		}
	}
}

func TestExtractTerminologyOnlyRelevantTerms(t *testing.T) {
	terms := extractTerminology("The system system database banana keyboard architecture")

	if terms["system"] != 2 {
		t.Errorf("system count = %d, want 2", terms["system"])
	}
	if terms["database"] != 1 || terms["architecture"] != 1 {
		t.Errorf("terms = %v, want database and architecture counted once", terms)
	}
	if _, ok := terms["banana"]; ok {
		t.Error("non-vocabulary word survived extraction")
	}
}

func TestHeadingHistogramAndStyle(t *testing.T) {
	content := "# One\n## Two\n## Three\nbody\n### Four"
	hist := headingHistogram(content)

	if hist["level_1"] != 1 || hist["level_2"] != 2 || hist["level_3"] != 1 {
		t.Errorf("histogram = %v", hist)
	}
}

func TestTopTermsDeterministicOnTies(t *testing.T) {
	terms := map[string]float64{"zeta": 1, "alpha": 1, "mid": 2}

	top := topTerms(terms, 2)

	if len(top) != 2 {
		t.Fatalf("len = %d, want 2", len(top))
	}
	if _, ok := top["mid"]; !ok {
		t.Error("highest-weight term missing")
	}
	if _, ok := top["alpha"]; !ok {
		t.Errorf("tie should resolve alphabetically, got %v", top)
	}
}

func TestWeightedTerminologyFavorsHighFeedback(t *testing.T) {
	docs := &fakeDocumentRepo{docs: []*entity.Document{
		sampleDocument(strings.Repeat("security ", 3), 5),
		sampleDocument(strings.Repeat("performance ", 3), 1),
	}}
	builder := newTestBuilder(docs, &fakeProfileRepo{})

	result := builder.Build(context.Background(), []string{"SRS"}, 0)

	sec := result.Profile.Terminology["security"]
	perf := result.Profile.Terminology["performance"]
	if sec <= perf {
		t.Errorf("security weight %v not above performance weight %v", sec, perf)
	}
}
