// FILE: pkg/docgen/workflow/orchestrator.go
// PURPOSE: Directed state machine sequencing the generation pipeline

package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docgen-be/internal/entity"
	"docgen-be/internal/pkg/logger"
	"docgen-be/internal/repository/contract"
	"docgen-be/pkg/docgen"
	"docgen-be/pkg/docgen/compliance"
	"docgen-be/pkg/docgen/generate"
	"docgen-be/pkg/docgen/retrieval"
	"docgen-be/pkg/docgen/review"
	"docgen-be/pkg/docgen/styleprofile"
	"docgen-be/pkg/retry"

	"github.com/google/uuid"
)

// ReviewPolicy controls the compliance_checked branch. PolicyAlways mirrors
// current production behavior (every draft gets a review pass); the
// compliance-gated rule stays available behind the knob until confirmed.
type ReviewPolicy string

const (
	PolicyAlways     ReviewPolicy = "always"
	PolicyCompliance ReviewPolicy = "compliance"
)

// compliance-gated policy also reviews below this quality
const complianceQualityGate = 0.8

type route string

const (
	routeReview     route = "review"
	routeRegenerate route = "regenerate"
	routeFinalize   route = "finalize"
	routeError      route = "error"
)

type Request struct {
	DocType       string
	Summary       string
	Requirements  string
	Style         string
	Feedback      []string
	MaxIterations int
}

type Outcome struct {
	Status       docgen.Status        `json:"status"`
	WorkflowId   uuid.UUID            `json:"workflow_id"`
	DocumentId   *uuid.UUID           `json:"document_id,omitempty"`
	Content      string               `json:"content"`
	WordCount    int                  `json:"word_count"`
	QualityScore float64              `json:"quality_score"`
	Iterations   int                  `json:"iterations"`
	ErrorMessage string               `json:"error_message,omitempty"`
	Degradations []string             `json:"degradations,omitempty"`
	Messages     []string             `json:"messages,omitempty"`
	Context      []docgen.ScoredChunk `json:"-"`
}

// IngestRequest is what finalization hands to the ingestion collaborator.
type IngestRequest struct {
	Filename      string
	Content       string
	DocType       string
	Approved      bool
	FeedbackScore int
}

// Ingestor persists a finalized document plus its chunks and embeddings.
type Ingestor interface {
	Ingest(ctx context.Context, req IngestRequest) (uuid.UUID, error)
}

// StatusReporter receives live phase updates for a running workflow. Nil
// reporters are skipped.
type StatusReporter interface {
	Report(ctx context.Context, workflowId uuid.UUID, phase string, detail map[string]interface{})
}

// EventSink publishes domain events at terminal transitions.
type EventSink interface {
	WorkflowCompleted(ctx context.Context, workflowId uuid.UUID, documentId *uuid.UUID, qualityScore float64, iterations int)
	WorkflowFailed(ctx context.Context, workflowId uuid.UUID, reason string)
}

// Notifier delivers an out-of-band completion notice (mail). Optional.
type Notifier interface {
	WorkflowCompleted(docType string, documentId *uuid.UUID, wordCount int)
}

type Orchestrator struct {
	styleBuilder *styleprofile.Builder
	ranker       *retrieval.Ranker
	drafter      *generate.Drafter
	checker      *compliance.Checker
	editor       *review.Editor

	ingestor  Ingestor
	workflows contract.WorkflowRepository
	reporter  StatusReporter
	sink      EventSink
	notifier  Notifier

	policy               ReviewPolicy
	retryPolicy          retry.Policy
	timeout              time.Duration
	maxIterations        int
	qualityThreshold     float64
	topK                 int
	preferredMinFeedback int
	log                  logger.ILogger
}

type Config struct {
	ReviewPolicy  ReviewPolicy
	RetryPolicy   retry.Policy
	Timeout       time.Duration
	MaxIterations int

	// QualityThreshold stops the regeneration loop once reached after review.
	QualityThreshold float64
	// TopK bounds context retrieval; PreferredMinFeedback is the feedback
	// floor for the style corpus and retrieval filter.
	TopK                 int
	PreferredMinFeedback int
}

func NewOrchestrator(
	styleBuilder *styleprofile.Builder,
	ranker *retrieval.Ranker,
	drafter *generate.Drafter,
	checker *compliance.Checker,
	editor *review.Editor,
	ingestor Ingestor,
	workflows contract.WorkflowRepository,
	reporter StatusReporter,
	sink EventSink,
	notifier Notifier,
	cfg Config,
	log logger.ILogger,
) *Orchestrator {
	if cfg.ReviewPolicy == "" {
		cfg.ReviewPolicy = PolicyAlways
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 3
	}
	if cfg.RetryPolicy.MaxAttempts == 0 {
		cfg.RetryPolicy = retry.DefaultPolicy()
	}
	if cfg.QualityThreshold <= 0 {
		cfg.QualityThreshold = 0.7
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.PreferredMinFeedback <= 0 {
		cfg.PreferredMinFeedback = 3
	}
	return &Orchestrator{
		styleBuilder:         styleBuilder,
		ranker:               ranker,
		drafter:              drafter,
		checker:              checker,
		editor:               editor,
		ingestor:             ingestor,
		workflows:            workflows,
		reporter:             reporter,
		sink:                 sink,
		notifier:             notifier,
		policy:               cfg.ReviewPolicy,
		retryPolicy:          cfg.RetryPolicy,
		timeout:              cfg.Timeout,
		maxIterations:        cfg.MaxIterations,
		qualityThreshold:     cfg.QualityThreshold,
		topK:                 cfg.TopK,
		preferredMinFeedback: cfg.PreferredMinFeedback,
		log:                  log,
	}
}

// Run executes one workflow end to end. It never returns an error: the caller
// always receives an Outcome, falling back to a single direct generation if
// the multi-step pipeline exceeds its wall-clock budget.
func (o *Orchestrator) Run(ctx context.Context, req Request) Outcome {
	runCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	maxIterations := req.MaxIterations
	if maxIterations <= 0 {
		maxIterations = o.maxIterations
	}

	state := NewState(req.DocType, req.Summary, req.Requirements, req.Style, req.Feedback, maxIterations)
	o.persistStart(ctx, state)

	done := make(chan Outcome, 1)
	go func() {
		done <- o.runPipeline(runCtx, state)
	}()

	select {
	case outcome := <-done:
		return outcome
	case <-runCtx.Done():
		o.log.Warn("workflow", "Pipeline timed out, falling back to direct generation", map[string]interface{}{
			"workflow_id": state.WorkflowId.String(),
			"timeout":     o.timeout.String(),
		})
		return o.directGeneration(ctx, state)
	}
}

func (o *Orchestrator) runPipeline(ctx context.Context, state State) Outcome {
	state = state.
		WithPhase(PhaseInitializing).
		WithMessage("Workflow started")
	o.report(ctx, state)

	state = o.buildStyleProfile(ctx, state)
	if state.ErrorMessage != "" {
		return o.handleError(ctx, state)
	}

	state = o.retrieveContext(ctx, state)
	if state.ErrorMessage != "" {
		return o.handleError(ctx, state)
	}

	for {
		state = o.generateDocument(ctx, state)

		state = o.complianceCheck(state)
		switch o.shouldReview(state) {
		case routeError:
			return o.handleError(ctx, state)
		case routeFinalize:
			return o.finalize(ctx, state)
		}

		state = o.reviewDocument(ctx, state)
		switch o.shouldRegenerate(state) {
		case routeError:
			return o.handleError(ctx, state)
		case routeRegenerate:
			continue
		default:
			return o.finalize(ctx, state)
		}
	}
}

func (o *Orchestrator) buildStyleProfile(ctx context.Context, state State) State {
	result := o.styleBuilder.Build(ctx, []string{state.DocType}, o.preferredMinFeedback)

	if result.Status == docgen.StatusDegraded {
		state = state.WithDegradation(result.Reason)
	}

	state = state.WithPhase(PhaseStyleProfileBuilt)
	state.StyleProfile = result.Profile
	state = state.
		WithMessage(fmt.Sprintf("Style profile built from %d documents", result.DocumentCount)).
		WithAgentRecord("style_profile_builder", string(result.Status), map[string]interface{}{
			"document_count": result.DocumentCount,
			"cache_hit":      result.CacheHit,
		})
	o.report(ctx, state)
	return state
}

func (o *Orchestrator) retrieveContext(ctx context.Context, state State) State {
	query := strings.TrimSpace(state.Summary + " " + state.Requirements)

	result, err := retry.Do(ctx, o.retryPolicy, func() (retrieval.Result, error) {
		res := o.ranker.Retrieve(ctx, query, state.DocType, o.preferredMinFeedback, o.topK)
		if res.Status == docgen.StatusError && res.Reason != "empty query" {
			return res, fmt.Errorf("retrieval failed: %s", res.Reason)
		}
		return res, nil
	})
	if err != nil {
		// Retrieval exhaustion is not fatal: generation works with no context.
		o.log.Warn("workflow", "Context retrieval exhausted retries", map[string]interface{}{"error": err.Error()})
		state = state.WithDegradation("retrieval unavailable")
		result = retrieval.Result{Chunks: []docgen.ScoredChunk{}}
	} else if result.Status == docgen.StatusDegraded {
		state = state.WithDegradation(result.Reason)
	}

	state = state.WithPhase(PhaseContextRetrieved)
	state.RetrievedContext = result.Chunks
	state = state.
		WithMessage(fmt.Sprintf("Retrieved %d context chunks", len(result.Chunks))).
		WithAgentRecord("retriever", string(result.Status), map[string]interface{}{
			"chunks": len(result.Chunks),
		})
	o.report(ctx, state)
	return state
}

func (o *Orchestrator) generateDocument(ctx context.Context, state State) State {
	state.IterationCount++

	result := o.drafter.Generate(ctx, state.DocType, state.Summary, state.Requirements, state.RetrievedContext, state.StyleProfile)

	switch result.Status {
	case docgen.StatusError:
		return state.WithError(result.Reason).WithPhase(PhaseFailed)
	case docgen.StatusDegraded:
		state = state.WithDegradation(result.Reason)
	}

	state = state.WithPhase(PhaseDocumentGenerated)
	state.DraftDocument = result.Content
	state = state.
		WithMessage(fmt.Sprintf("Document generated (iteration %d)", state.IterationCount)).
		WithAgentRecord("doc_generator", string(result.Status), map[string]interface{}{
			"word_count":    result.WordCount,
			"iteration":     state.IterationCount,
			"used_fallback": result.UsedFallback,
		})
	o.report(ctx, state)
	return state
}

func (o *Orchestrator) complianceCheck(state State) State {
	if state.ErrorMessage != "" {
		return state
	}

	check := o.checker.Check(state.DocType, state.DraftDocument)

	state = state.WithPhase(PhaseComplianceChecked)
	state.ComplianceCheck = &check

	verdict := "Compliant"
	if !check.Compliant {
		verdict = "Issues found"
	}
	state = state.
		WithMessage("Compliance check: "+verdict).
		WithAgentRecord("compliance_checker", "completed", map[string]interface{}{
			"compliant":        check.Compliant,
			"missing_sections": check.MissingSections,
		})
	return state
}

func (o *Orchestrator) reviewDocument(ctx context.Context, state State) State {
	result, err := retry.Do(ctx, o.retryPolicy, func() (review.Result, error) {
		res := o.editor.Review(ctx, state.DraftDocument, state.DocType, state.StyleProfile, state.Feedback, review.ReviewBoth)
		if res.Status == docgen.StatusError {
			return res, fmt.Errorf("review failed: %s", res.Reason)
		}
		return res, nil
	})
	if err != nil {
		// Review exhaustion keeps the draft; the workflow can still finalize.
		o.log.Warn("workflow", "Review exhausted retries, keeping draft", map[string]interface{}{"error": err.Error()})
		state = state.WithDegradation("review unavailable")
		state = state.WithPhase(PhaseDocumentReviewed)
		return state.WithMessage("Document reviewed with 0 improvements")
	}
	if result.Status == docgen.StatusDegraded {
		state = state.WithDegradation(result.Reason)
	}

	state = state.WithPhase(PhaseDocumentReviewed)
	state.ReviewedDocument = result.ImprovedContent
	state = state.WithQualityIncrease(len(result.ChangesMade))
	state = state.
		WithMessage(fmt.Sprintf("Document reviewed with %d improvements", len(result.ChangesMade))).
		WithAgentRecord("reviewer", string(result.Status), map[string]interface{}{
			"improvements_made": len(result.ChangesMade),
			"quality_score":     state.QualityScore,
			"change_summary":    result.DiffDetails.Summary,
		})
	o.report(ctx, state)
	return state
}

func (o *Orchestrator) shouldReview(state State) route {
	if state.ErrorMessage != "" {
		return routeError
	}

	if o.policy == PolicyCompliance {
		if state.ComplianceCheck != nil && !state.ComplianceCheck.Compliant {
			return routeReview
		}
		if state.QualityScore < complianceQualityGate {
			return routeReview
		}
		return routeFinalize
	}

	return routeReview
}

func (o *Orchestrator) shouldRegenerate(state State) route {
	if state.ErrorMessage != "" {
		return routeError
	}
	if state.IterationCount >= state.MaxIterations {
		return routeFinalize
	}
	if state.QualityScore < o.qualityThreshold {
		return routeRegenerate
	}
	return routeFinalize
}

func (o *Orchestrator) finalize(ctx context.Context, state State) Outcome {
	// An expired context means the caller already took the timeout fallback;
	// the abandoned run must not persist, publish, or notify.
	if ctx.Err() != nil {
		return Outcome{
			Status:       docgen.StatusError,
			WorkflowId:   state.WorkflowId,
			ErrorMessage: ctx.Err().Error(),
			Iterations:   state.IterationCount,
		}
	}

	finalContent := state.ReviewedDocument
	if finalContent == "" {
		finalContent = state.DraftDocument
	}
	if strings.TrimSpace(finalContent) == "" {
		return o.handleError(ctx, state.WithError("no content produced"))
	}

	state.FinalDocument = finalContent
	state = state.WithPhase(PhaseCompleted)

	feedbackScore := state.FinalFeedbackScore()
	wordCount := len(strings.Fields(finalContent))

	documentId, err := retry.Do(ctx, o.retryPolicy, func() (uuid.UUID, error) {
		return o.ingestor.Ingest(ctx, IngestRequest{
			Filename:      fmt.Sprintf("final_%s_%s.md", state.DocType, state.WorkflowId.String()),
			Content:       finalContent,
			DocType:       state.DocType,
			Approved:      true,
			FeedbackScore: feedbackScore,
		})
	})
	if err != nil {
		o.log.Error("workflow", "Failed to persist finalized document", map[string]interface{}{"error": err.Error()})
		state = state.WithDegradation("final persistence failed")
	} else {
		state.DocumentId = &documentId
		state = state.WithMessage(fmt.Sprintf("Document finalized with %d words and stored with ID %s", wordCount, documentId.String()))
	}

	state = state.WithAgentRecord("finalizer", "completed", map[string]interface{}{
		"final_word_count": wordCount,
		"total_iterations": state.IterationCount,
		"feedback_score":   feedbackScore,
	})

	o.persistTerminal(ctx, state)
	o.report(ctx, state)

	if ctx.Err() == nil {
		if o.sink != nil {
			o.sink.WorkflowCompleted(ctx, state.WorkflowId, state.DocumentId, state.QualityScore, state.IterationCount)
		}
		if o.notifier != nil {
			o.notifier.WorkflowCompleted(state.DocType, state.DocumentId, wordCount)
		}
	}

	status := docgen.StatusSuccess
	if len(state.Degradations) > 0 {
		status = docgen.StatusDegraded
	}

	return Outcome{
		Status:       status,
		WorkflowId:   state.WorkflowId,
		DocumentId:   state.DocumentId,
		Content:      finalContent,
		WordCount:    wordCount,
		QualityScore: state.QualityScore,
		Iterations:   state.IterationCount,
		Degradations: state.Degradations,
		Messages:     state.Messages,
		Context:      state.RetrievedContext,
	}
}

func (o *Orchestrator) handleError(ctx context.Context, state State) Outcome {
	state = state.WithPhase(PhaseFailed)
	state = state.
		WithMessage("Workflow failed: "+state.ErrorMessage).
		WithAgentRecord("error_handler", "failed", map[string]interface{}{
			"error": state.ErrorMessage,
		})

	o.persistTerminal(ctx, state)
	o.report(ctx, state)

	if ctx.Err() == nil && o.sink != nil {
		o.sink.WorkflowFailed(ctx, state.WorkflowId, state.ErrorMessage)
	}

	return Outcome{
		Status:       docgen.StatusError,
		WorkflowId:   state.WorkflowId,
		ErrorMessage: state.ErrorMessage,
		QualityScore: state.QualityScore,
		Iterations:   state.IterationCount,
		Degradations: state.Degradations,
		Messages:     state.Messages,
	}
}

// directGeneration bypasses retrieval and review to guarantee the caller a
// document after a pipeline timeout. It runs against the parent context.
func (o *Orchestrator) directGeneration(ctx context.Context, state State) Outcome {
	result := o.drafter.Generate(ctx, state.DocType, state.Summary, state.Requirements, nil, nil)

	state = state.
		WithDegradation("workflow timeout, direct generation used").
		WithMessage("Pipeline timed out, produced document via direct generation")

	if result.Status == docgen.StatusError {
		return o.handleError(ctx, state.WithError(result.Reason))
	}

	state.FinalDocument = result.Content
	state = state.WithPhase(PhaseCompleted)
	o.persistTerminal(ctx, state)
	o.report(ctx, state)

	if o.sink != nil {
		o.sink.WorkflowCompleted(ctx, state.WorkflowId, nil, state.QualityScore, state.IterationCount)
	}

	return Outcome{
		Status:       docgen.StatusDegraded,
		WorkflowId:   state.WorkflowId,
		Content:      result.Content,
		WordCount:    result.WordCount,
		QualityScore: state.QualityScore,
		Iterations:   state.IterationCount,
		Degradations: state.Degradations,
		Messages:     state.Messages,
	}
}

func (o *Orchestrator) report(ctx context.Context, state State) {
	if o.reporter == nil || ctx.Err() != nil {
		return
	}
	o.reporter.Report(ctx, state.WorkflowId, state.Phase, map[string]interface{}{
		"iteration_count": state.IterationCount,
		"quality_score":   state.QualityScore,
	})
}

func (o *Orchestrator) persistStart(ctx context.Context, state State) {
	if o.workflows == nil {
		return
	}
	record := &entity.WorkflowExecution{
		Id:      state.WorkflowId,
		DocType: state.DocType,
		Status:  entity.WorkflowStatusRunning,
	}
	if err := o.workflows.Create(ctx, record); err != nil {
		o.log.Warn("workflow", "Failed to persist workflow start", map[string]interface{}{"error": err.Error()})
	}
}

// persistTerminal records the final snapshot and the per-agent audit trail.
// Telemetry failures never change the outcome. Abandoned runs (expired
// context) write nothing: the timeout fallback owns the terminal record.
func (o *Orchestrator) persistTerminal(ctx context.Context, state State) {
	if o.workflows == nil || ctx.Err() != nil {
		return
	}

	status := entity.WorkflowStatusSuccess
	if state.Phase == PhaseFailed {
		status = entity.WorkflowStatusError
	} else if len(state.Degradations) > 0 {
		status = entity.WorkflowStatusDegraded
	}

	now := time.Now().UTC()
	record := &entity.WorkflowExecution{
		Id:             state.WorkflowId,
		DocumentId:     state.DocumentId,
		DocType:        state.DocType,
		Status:         status,
		QualityScore:   state.QualityScore,
		IterationCount: state.IterationCount,
		ErrorMessage:   state.ErrorMessage,
		Telemetry: map[string]interface{}{
			"messages":     state.Messages,
			"degradations": state.Degradations,
		},
		StartedAt:   state.StartedAt,
		CompletedAt: &now,
	}
	if err := o.workflows.Update(ctx, record); err != nil {
		o.log.Warn("workflow", "Failed to persist workflow telemetry", map[string]interface{}{"error": err.Error()})
	}

	for _, rec := range state.AgentExecutions {
		agent := &entity.AgentExecution{
			WorkflowId: state.WorkflowId,
			AgentName:  rec.Agent,
			Status:     rec.Status,
			Detail:     rec.Details,
			CreatedAt:  rec.Timestamp,
		}
		if err := o.workflows.CreateAgentExecution(ctx, agent); err != nil {
			o.log.Warn("workflow", "Failed to persist agent execution", map[string]interface{}{"error": err.Error()})
			break
		}
	}
}
