// FILE: internal/service/mail_notifier.go
// PURPOSE: Sends a completion mail when a generation run finishes.
package service

import (
	"docgen-be/internal/pkg/logger"
	"docgen-be/internal/pkg/mailer"

	"github.com/google/uuid"
)

type mailNotifier struct {
	mail        mailer.IEmailService
	notifyEmail string
	log         logger.ILogger
}

// NewMailNotifier adapts the mailer to the orchestrator's notifier contract.
// Returns nil when no recipient is configured so the orchestrator skips it.
func NewMailNotifier(mail mailer.IEmailService, notifyEmail string, log logger.ILogger) *mailNotifier {
	if mail == nil || notifyEmail == "" {
		return nil
	}
	return &mailNotifier{mail: mail, notifyEmail: notifyEmail, log: log}
}

func (n *mailNotifier) WorkflowCompleted(docType string, documentId *uuid.UUID, wordCount int) {
	if n == nil {
		return
	}
	docId := "not stored"
	if documentId != nil {
		docId = documentId.String()
	}
	if err := n.mail.SendWorkflowCompleted(n.notifyEmail, docType, docId, wordCount); err != nil {
		n.log.Warn("mail_notifier", "Failed to send completion mail", map[string]interface{}{"error": err.Error()})
	}
}
