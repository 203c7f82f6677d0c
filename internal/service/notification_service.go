package service

import (
	"context"
	"fmt"

	"docgen-be/internal/pkg/logger"
	"docgen-be/internal/pkg/mailer"
	"docgen-be/internal/websocket"
	"docgen-be/pkg/events"
	pktNats "docgen-be/pkg/nats" // Renamed to avoid collision

	"github.com/google/uuid"
)

// NotificationService relays domain events from the NATS bus to websocket
// watchers, and mails the operator on terminal workflow outcomes.
type NotificationService struct {
	subscriber  *pktNats.Subscriber
	hub         *websocket.Hub
	mail        mailer.IEmailService
	notifyEmail string
	logger      logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, hub *websocket.Hub, mail mailer.IEmailService, notifyEmail string, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber:  sub,
		hub:         hub,
		mail:        mail,
		notifyEmail: notifyEmail,
		logger:      log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("docgen.>", "docgen-notifier", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to docgen.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", event.EventType()), map[string]interface{}{"type": event.EventType()})

	payload := event.Payload()

	// Relay onto the websocket hub so watchers of the workflow see the
	// terminal event too, not just phase updates.
	if s.hub != nil {
		if wfStr, ok := payload["workflow_id"].(string); ok {
			if wfId, err := uuid.Parse(wfStr); err == nil {
				s.hub.Publish(wfId, event.EventType(), payload)
			}
		}
	}

	if s.mail == nil || s.notifyEmail == "" {
		return nil
	}

	// Completion mail is sent by the orchestrator's notifier, which knows the
	// document type and word count. Failures only surface here.
	if event.EventType() == events.TypeWorkflowFailed {
		docType, _ := payload["doc_type"].(string)
		if docType == "" {
			docType = "document"
		}
		reason, _ := payload["reason"].(string)
		if err := s.mail.SendWorkflowFailed(s.notifyEmail, docType, reason); err != nil {
			s.logger.Warn("NotificationService", "Failed to send failure mail", map[string]interface{}{"error": err.Error()})
		}
	}

	return nil
}
