// FILE: internal/service/event_sink.go
// PURPOSE: Publishes workflow terminal events to NATS JetStream.
package service

import (
	"context"

	"docgen-be/internal/pkg/logger"
	"docgen-be/pkg/events"
	pktNats "docgen-be/pkg/nats"

	"github.com/google/uuid"
)

type natsEventSink struct {
	publisher *pktNats.Publisher
	log       logger.ILogger
}

// NewNatsEventSink wraps the NATS publisher as the orchestrator's event sink.
// A nil publisher yields a sink that drops events, so the pipeline still runs
// when the broker is down.
func NewNatsEventSink(publisher *pktNats.Publisher, log logger.ILogger) *natsEventSink {
	return &natsEventSink{publisher: publisher, log: log}
}

func (s *natsEventSink) WorkflowCompleted(ctx context.Context, workflowId uuid.UUID, documentId *uuid.UUID, qualityScore float64, iterations int) {
	if s.publisher == nil {
		return
	}
	docId := ""
	if documentId != nil {
		docId = documentId.String()
	}
	event := events.NewWorkflowCompleted(workflowId.String(), docId, qualityScore, iterations)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("event_sink", "Failed to publish workflow completed event", map[string]interface{}{
			"workflow_id": workflowId,
			"error":       err.Error(),
		})
	}
}

func (s *natsEventSink) WorkflowFailed(ctx context.Context, workflowId uuid.UUID, reason string) {
	if s.publisher == nil {
		return
	}
	event := events.NewWorkflowFailed(workflowId.String(), reason)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("event_sink", "Failed to publish workflow failed event", map[string]interface{}{
			"workflow_id": workflowId,
			"error":       err.Error(),
		})
	}
}
