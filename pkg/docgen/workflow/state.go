// FILE: pkg/docgen/workflow/state.go
// PURPOSE: Immutable workflow state threaded through the state machine

package workflow

import (
	"time"

	"docgen-be/pkg/docgen"
	"docgen-be/pkg/docgen/compliance"

	"docgen-be/internal/entity"

	"github.com/google/uuid"
)

// Phase names the state machine moves through.
const (
	PhaseInitializing      = "initializing"
	PhaseStyleProfileBuilt = "style_profile_built"
	PhaseContextRetrieved  = "context_retrieved"
	PhaseDocumentGenerated = "document_generated"
	PhaseComplianceChecked = "compliance_checked"
	PhaseDocumentReviewed  = "document_reviewed"
	PhaseCompleted         = "completed"
	PhaseFailed            = "failed"
)

// quality starts here regardless of caller input and only moves up
const initialQualityScore = 0.7

type AgentRecord struct {
	Agent     string                 `json:"agent"`
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// State is a value, not a pointer. Every node returns a new State; the
// append-only lists are copied on write so no two snapshots alias a slice.
type State struct {
	WorkflowId uuid.UUID
	DocumentId *uuid.UUID

	DocType      string
	Summary      string
	Requirements string
	Style        string

	StyleProfile     *entity.StyleProfile
	RetrievedContext []docgen.ScoredChunk
	DraftDocument    string
	ReviewedDocument string
	FinalDocument    string

	Phase           string
	ErrorMessage    string
	ComplianceCheck *compliance.CheckResult
	QualityScore    float64
	Feedback        []string

	IterationCount int
	MaxIterations  int

	StartedAt time.Time

	AgentExecutions []AgentRecord
	Messages        []string

	// Degradations collects the reasons any step fell back, so the terminal
	// outcome can report degraded instead of success.
	Degradations []string
}

func NewState(docType, summary, requirements, style string, feedback []string, maxIterations int) State {
	if maxIterations <= 0 {
		maxIterations = 3
	}
	return State{
		WorkflowId:    uuid.New(),
		DocType:       docType,
		Summary:       summary,
		Requirements:  requirements,
		Style:         style,
		Phase:         PhaseInitializing,
		QualityScore:  initialQualityScore,
		Feedback:      feedback,
		MaxIterations: maxIterations,
		StartedAt:     time.Now().UTC(),
	}
}

func (s State) WithPhase(phase string) State {
	s.Phase = phase
	return s
}

func (s State) WithError(message string) State {
	s.ErrorMessage = message
	return s
}

func (s State) WithMessage(message string) State {
	messages := make([]string, len(s.Messages), len(s.Messages)+1)
	copy(messages, s.Messages)
	s.Messages = append(messages, message)
	return s
}

func (s State) WithAgentRecord(agent, status string, details map[string]interface{}) State {
	records := make([]AgentRecord, len(s.AgentExecutions), len(s.AgentExecutions)+1)
	copy(records, s.AgentExecutions)
	s.AgentExecutions = append(records, AgentRecord{
		Agent:     agent,
		Status:    status,
		Timestamp: time.Now().UTC(),
		Details:   details,
	})
	return s
}

func (s State) WithDegradation(reason string) State {
	reasons := make([]string, len(s.Degradations), len(s.Degradations)+1)
	copy(reasons, s.Degradations)
	s.Degradations = append(reasons, reason)
	return s
}

// WithQualityIncrease applies the review reward rule: +0.05 per change made,
// clamped to 1.0 and never decreasing.
func (s State) WithQualityIncrease(changes int) State {
	quality := s.QualityScore + float64(changes)*0.05
	if quality > 1.0 {
		quality = 1.0
	}
	if quality > s.QualityScore {
		s.QualityScore = quality
	}
	return s
}

func (s State) Terminal() bool {
	return s.Phase == PhaseCompleted || s.Phase == PhaseFailed
}

// FinalFeedbackScore maps the quality score onto the 1..5 rating persisted
// with the finalized document: round(clamp(q,0,1) * 5) clamped to [1,5].
func (s State) FinalFeedbackScore() int {
	q := s.QualityScore
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}
	score := int(q*5 + 0.5)
	if score < 1 {
		return 1
	}
	if score > 5 {
		return 5
	}
	return score
}
