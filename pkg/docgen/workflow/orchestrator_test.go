package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"docgen-be/internal/entity"
	"docgen-be/internal/pkg/logger"
	"docgen-be/internal/repository/specification"
	"docgen-be/pkg/cache"
	"docgen-be/pkg/docgen"
	"docgen-be/pkg/docgen/compliance"
	"docgen-be/pkg/docgen/generate"
	"docgen-be/pkg/docgen/retrieval"
	"docgen-be/pkg/docgen/review"
	"docgen-be/pkg/docgen/styleprofile"
	"docgen-be/pkg/embedding"
	"docgen-be/pkg/llm"
	"docgen-be/pkg/retry"
	"docgen-be/pkg/vector"

	"github.com/google/uuid"
)

// queueProvider replays scripted completions. The last response repeats once
// the queue drains so concurrent callers always get an answer.
type queueProvider struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
}

func (p *queueProvider) next() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	if len(p.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	resp := p.responses[0]
	if len(p.responses) > 1 {
		p.responses = p.responses[1:]
	}
	return resp, nil
}

func (p *queueProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.next()
}

func (p *queueProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.next()
}

type stubDocRepo struct {
	block bool
}

func (r *stubDocRepo) Create(ctx context.Context, doc *entity.Document) error { return nil }
func (r *stubDocRepo) Update(ctx context.Context, doc *entity.Document) error { return nil }
func (r *stubDocRepo) Delete(ctx context.Context, id uuid.UUID) error         { return nil }
func (r *stubDocRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	return nil, nil
}
func (r *stubDocRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	if r.block {
		// Park forever so the pipeline reliably loses the timeout race.
		select {}
	}
	return nil, nil
}
func (r *stubDocRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}
func (r *stubDocRepo) UpdateFeedbackScore(ctx context.Context, id uuid.UUID, score int) error {
	return nil
}

type stubProfileRepo struct{}

func (r *stubProfileRepo) Create(ctx context.Context, profile *entity.StyleProfile) error {
	return nil
}
func (r *stubProfileRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StyleProfile, error) {
	return nil, nil
}
func (r *stubProfileRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StyleProfile, error) {
	return nil, nil
}

type staticIndex struct {
	matches []vector.Match
}

func (s *staticIndex) Search(ctx context.Context, emb []float32, limit int, filter vector.Filter) ([]vector.Match, error) {
	return s.matches, nil
}
func (s *staticIndex) Upsert(ctx context.Context, docs []vector.Document) error { return nil }
func (s *staticIndex) SupportsNativeFilter() bool                               { return true }

type unitEmbedder struct{}

func (unitEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0}},
	}, nil
}

type fakeIngestor struct {
	mu   sync.Mutex
	id   uuid.UUID
	err  error
	reqs []IngestRequest
}

func (f *fakeIngestor) Ingest(ctx context.Context, req IngestRequest) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.reqs = append(f.reqs, req)
	return f.id, nil
}

type fakeSink struct {
	mu        sync.Mutex
	completed int
	failed    int
	reason    string
}

func (f *fakeSink) WorkflowCompleted(ctx context.Context, workflowId uuid.UUID, documentId *uuid.UUID, qualityScore float64, iterations int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed++
}

func (f *fakeSink) WorkflowFailed(ctx context.Context, workflowId uuid.UUID, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed++
	f.reason = reason
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeNotifier) WorkflowCompleted(docType string, documentId *uuid.UUID, wordCount int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
}

type harness struct {
	drafterLLM *queueProvider
	editorLLM  *queueProvider
	ingestor   *fakeIngestor
	sink       *fakeSink
	notifier   *fakeNotifier
	docs       *stubDocRepo
}

const draftBody = "# SRS: Billing\n\n## Introduction\nDraft body.\n\n## Conclusion\nDone."
const reviewedBody = "# SRS: Billing\n\n## Introduction\nImproved body.\n\n## Conclusion\nDone."

func newHarness(cfg Config) (*Orchestrator, *harness) {
	h := &harness{
		drafterLLM: &queueProvider{responses: []string{draftBody}},
		editorLLM:  &queueProvider{responses: []string{reviewedBody}},
		ingestor:   &fakeIngestor{id: uuid.New()},
		sink:       &fakeSink{},
		notifier:   &fakeNotifier{},
		docs:       &stubDocRepo{},
	}

	log := logger.NewNop()
	builder := styleprofile.NewBuilder(h.docs, &stubProfileRepo{}, cache.NewTTLCache(time.Minute, time.Minute), time.Minute, log)
	index := &staticIndex{matches: []vector.Match{{
		Document: vector.Document{
			Content:  "Billing systems require audit trails.",
			Metadata: map[string]interface{}{"doc_type": "SRS", "feedback_score": 4},
		},
		Similarity: 0.9,
	}}}
	ranker := retrieval.NewRanker(index, unitEmbedder{}, log, 5, 20)
	drafter := generate.NewDrafter(h.drafterLLM, log)
	checker := compliance.NewChecker(5)
	editor := review.NewEditor(h.editorLLM, log)

	if cfg.RetryPolicy.MaxAttempts == 0 {
		cfg.RetryPolicy = retry.Policy{MaxAttempts: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
	}

	orch := NewOrchestrator(builder, ranker, drafter, checker, editor, h.ingestor, nil, nil, h.sink, h.notifier, cfg, log)
	return orch, h
}

func billingRequest() Request {
	return Request{
		DocType:      "SRS",
		Summary:      "Billing platform for subscription invoices",
		Requirements: "- generate invoices\n- track payments",
	}
}

func TestRunHappyPathFinalizesReviewedDocument(t *testing.T) {
	orch, h := newHarness(Config{})

	outcome := orch.Run(context.Background(), billingRequest())

	if outcome.Status != docgen.StatusSuccess {
		t.Fatalf("Status = %q, want success (degradations %v)", outcome.Status, outcome.Degradations)
	}
	if !strings.Contains(outcome.Content, "Improved body.") {
		t.Errorf("Content = %q, want the reviewed document, not the draft", outcome.Content)
	}
	if outcome.DocumentId == nil {
		t.Error("DocumentId = nil, want the ingested id")
	}
	if outcome.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", outcome.Iterations)
	}
	if outcome.QualityScore <= 0.7 {
		t.Errorf("QualityScore = %v, want above the initial 0.7 after review changes", outcome.QualityScore)
	}
	if h.sink.completed != 1 || h.sink.failed != 0 {
		t.Errorf("sink events = %d completed / %d failed, want 1 / 0", h.sink.completed, h.sink.failed)
	}
	if h.notifier.calls != 1 {
		t.Errorf("notifier calls = %d, want 1", h.notifier.calls)
	}
}

func TestRunIngestsApprovedWithMappedFeedbackScore(t *testing.T) {
	orch, h := newHarness(Config{})

	orch.Run(context.Background(), billingRequest())

	if len(h.ingestor.reqs) != 1 {
		t.Fatalf("ingest calls = %d, want 1", len(h.ingestor.reqs))
	}
	req := h.ingestor.reqs[0]
	if !req.Approved {
		t.Error("finalized document not marked approved")
	}
	// quality 0.75 rounds to 4 on the 1..5 scale
	if req.FeedbackScore != 4 {
		t.Errorf("FeedbackScore = %d, want 4", req.FeedbackScore)
	}
	if req.DocType != "SRS" {
		t.Errorf("DocType = %q, want SRS", req.DocType)
	}
}

func TestRunMissingInputFailsWorkflow(t *testing.T) {
	orch, h := newHarness(Config{})

	outcome := orch.Run(context.Background(), Request{DocType: "SRS"})

	if outcome.Status != docgen.StatusError {
		t.Fatalf("Status = %q, want error", outcome.Status)
	}
	if outcome.ErrorMessage == "" {
		t.Error("ErrorMessage empty")
	}
	if h.sink.failed != 1 {
		t.Errorf("failed events = %d, want 1", h.sink.failed)
	}
	if len(h.ingestor.reqs) != 0 {
		t.Errorf("ingest calls = %d, want 0", len(h.ingestor.reqs))
	}
}

func TestRunReviewExhaustionKeepsDraftAsDegraded(t *testing.T) {
	orch, h := newHarness(Config{})
	h.editorLLM.err = errors.New("model overloaded")

	outcome := orch.Run(context.Background(), billingRequest())

	if outcome.Status != docgen.StatusDegraded {
		t.Fatalf("Status = %q, want degraded", outcome.Status)
	}
	if !strings.Contains(outcome.Content, "Draft body.") {
		t.Errorf("Content = %q, want the unreviewed draft", outcome.Content)
	}
	if outcome.DocumentId == nil {
		t.Error("draft was not persisted")
	}
	if outcome.QualityScore != 0.7 {
		t.Errorf("QualityScore = %v, want the initial 0.7 with no review changes", outcome.QualityScore)
	}
}

func TestRunIngestFailureDegradesButKeepsContent(t *testing.T) {
	orch, h := newHarness(Config{})
	h.ingestor.err = errors.New("database down")

	outcome := orch.Run(context.Background(), billingRequest())

	if outcome.Status != docgen.StatusDegraded {
		t.Fatalf("Status = %q, want degraded", outcome.Status)
	}
	if outcome.DocumentId != nil {
		t.Error("DocumentId set despite ingest failure")
	}
	if !strings.Contains(outcome.Content, "Improved body.") {
		t.Error("finalized content lost on ingest failure")
	}
	if h.sink.completed != 1 {
		t.Errorf("completed events = %d, want 1", h.sink.completed)
	}
}

func TestRunTimeoutFallsBackToDirectGeneration(t *testing.T) {
	orch, h := newHarness(Config{Timeout: 25 * time.Millisecond})
	h.docs.block = true

	outcome := orch.Run(context.Background(), billingRequest())

	if outcome.Status != docgen.StatusDegraded {
		t.Fatalf("Status = %q, want degraded", outcome.Status)
	}
	found := false
	for _, d := range outcome.Degradations {
		if strings.Contains(d, "timeout") {
			found = true
		}
	}
	if !found {
		t.Errorf("Degradations = %v, want a timeout entry", outcome.Degradations)
	}
	if !strings.Contains(outcome.Content, "Draft body.") {
		t.Errorf("Content = %q, want a directly generated document", outcome.Content)
	}
}

func TestRunDrafterCallsBoundedByMaxIterations(t *testing.T) {
	orch, h := newHarness(Config{QualityThreshold: 0.99, MaxIterations: 3})
	// The reviewer returns the draft untouched, so quality never moves and
	// only the iteration cap can stop the loop.
	h.editorLLM.responses = []string{draftBody}

	outcome := orch.Run(context.Background(), billingRequest())

	if outcome.Iterations != 3 {
		t.Errorf("Iterations = %d, want the cap of 3", outcome.Iterations)
	}
	if h.drafterLLM.calls != 3 {
		t.Errorf("drafter calls = %d, want exactly one per iteration", h.drafterLLM.calls)
	}
	if outcome.QualityScore != 0.7 {
		t.Errorf("QualityScore = %v, want the unmoved initial 0.7", outcome.QualityScore)
	}
	if outcome.DocumentId == nil {
		t.Error("capped run still finalizes and stores the document")
	}
}

func TestFinalizeAfterTimeoutSkipsTerminalSideEffects(t *testing.T) {
	orch, h := newHarness(Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := NewState("SRS", "s", "r", "", nil, 3)
	state.ReviewedDocument = reviewedBody

	outcome := orch.finalize(ctx, state)

	if outcome.Status != docgen.StatusError {
		t.Errorf("Status = %q, want error for an abandoned run", outcome.Status)
	}
	if len(h.ingestor.reqs) != 0 {
		t.Errorf("ingest calls = %d, want 0 after the caller took the timeout fallback", len(h.ingestor.reqs))
	}
	if h.sink.completed != 0 {
		t.Errorf("completed events = %d, want 0", h.sink.completed)
	}
	if h.notifier.calls != 0 {
		t.Errorf("notifier calls = %d, want 0", h.notifier.calls)
	}
}

func TestShouldReviewPolicies(t *testing.T) {
	compliant := &compliance.CheckResult{Compliant: true}
	nonCompliant := &compliance.CheckResult{Compliant: false}

	tests := []struct {
		name    string
		policy  ReviewPolicy
		check   *compliance.CheckResult
		quality float64
		want    route
	}{
		{"always reviews compliant high-quality drafts", PolicyAlways, compliant, 1.0, routeReview},
		{"always reviews non-compliant drafts", PolicyAlways, nonCompliant, 1.0, routeReview},
		{"compliance policy skips review when compliant and high quality", PolicyCompliance, compliant, 0.85, routeFinalize},
		{"compliance policy reviews non-compliant drafts", PolicyCompliance, nonCompliant, 0.85, routeReview},
		{"compliance policy reviews below the quality gate", PolicyCompliance, compliant, 0.75, routeReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := &Orchestrator{policy: tt.policy}
			state := State{ComplianceCheck: tt.check, QualityScore: tt.quality}
			if got := orch.shouldReview(state); got != tt.want {
				t.Errorf("shouldReview = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShouldRegenerateGuards(t *testing.T) {
	tests := []struct {
		name       string
		quality    float64
		iteration  int
		maxIter    int
		errMessage string
		want       route
	}{
		{"quality below threshold regenerates", 0.6, 1, 3, "", routeRegenerate},
		{"iteration cap wins over low quality", 0.6, 3, 3, "", routeFinalize},
		{"quality at threshold finalizes", 0.7, 1, 3, "", routeFinalize},
		{"error routes to error handling", 0.9, 1, 3, "generation failed", routeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := &Orchestrator{qualityThreshold: 0.7}
			state := State{
				QualityScore:   tt.quality,
				IterationCount: tt.iteration,
				MaxIterations:  tt.maxIter,
				ErrorMessage:   tt.errMessage,
			}
			if got := orch.shouldRegenerate(state); got != tt.want {
				t.Errorf("shouldRegenerate = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQualityIncreaseClampsAndNeverDecreases(t *testing.T) {
	state := NewState("SRS", "s", "r", "", nil, 3)

	if state.QualityScore != 0.7 {
		t.Fatalf("initial quality = %v, want 0.7", state.QualityScore)
	}

	bumped := state.WithQualityIncrease(2)
	if bumped.QualityScore != 0.8 {
		t.Errorf("after 2 changes = %v, want 0.8", bumped.QualityScore)
	}

	capped := state.WithQualityIncrease(100)
	if capped.QualityScore != 1.0 {
		t.Errorf("after 100 changes = %v, want clamp at 1.0", capped.QualityScore)
	}

	unchanged := state.WithQualityIncrease(0)
	if unchanged.QualityScore != 0.7 {
		t.Errorf("after 0 changes = %v, want 0.7", unchanged.QualityScore)
	}
}

func TestFinalFeedbackScoreMapping(t *testing.T) {
	tests := []struct {
		quality float64
		want    int
	}{
		{0.0, 1},
		{0.1, 1},
		{0.5, 3},
		{0.7, 4},
		{0.75, 4},
		{1.0, 5},
		{1.7, 5},
		{-0.3, 1},
	}

	for _, tt := range tests {
		state := State{QualityScore: tt.quality}
		if got := state.FinalFeedbackScore(); got != tt.want {
			t.Errorf("FinalFeedbackScore(%v) = %d, want %d", tt.quality, got, tt.want)
		}
	}
}

func TestStateAppendsDoNotAliasSlices(t *testing.T) {
	base := NewState("SRS", "s", "r", "", nil, 3)
	withOne := base.WithMessage("first")
	withTwo := withOne.WithMessage("second")
	sibling := withOne.WithMessage("sibling")

	if len(withOne.Messages) != 1 {
		t.Errorf("withOne messages = %d, want 1", len(withOne.Messages))
	}
	if withTwo.Messages[1] != "second" || sibling.Messages[1] != "sibling" {
		t.Error("sibling snapshots share a backing array")
	}
}
