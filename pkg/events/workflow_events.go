package events

import "time"

// Event type codes published by the document generation domain.
const (
	TypeDocumentIngested  = "DOCUMENT_INGESTED"
	TypeWorkflowCompleted = "WORKFLOW_COMPLETED"
	TypeWorkflowFailed    = "WORKFLOW_FAILED"
	TypeFeedbackUpdated   = "FEEDBACK_UPDATED"
)

func NewDocumentIngested(documentID, docType string, chunkCount int) BaseEvent {
	return BaseEvent{
		Type: TypeDocumentIngested,
		Data: map[string]interface{}{
			"document_id": documentID,
			"doc_type":    docType,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

func NewWorkflowCompleted(workflowID, documentID string, qualityScore float64, iterations int) BaseEvent {
	return BaseEvent{
		Type: TypeWorkflowCompleted,
		Data: map[string]interface{}{
			"workflow_id":   workflowID,
			"document_id":   documentID,
			"quality_score": qualityScore,
			"iterations":    iterations,
		},
		OccurredAt: time.Now(),
	}
}

func NewWorkflowFailed(workflowID, reason string) BaseEvent {
	return BaseEvent{
		Type: TypeWorkflowFailed,
		Data: map[string]interface{}{
			"workflow_id": workflowID,
			"reason":      reason,
		},
		OccurredAt: time.Now(),
	}
}

func NewFeedbackUpdated(documentID string, score int) BaseEvent {
	return BaseEvent{
		Type: TypeFeedbackUpdated,
		Data: map[string]interface{}{
			"document_id": documentID,
			"score":       score,
		},
		OccurredAt: time.Now(),
	}
}
