// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendWorkflowCompleted(toEmail, docType, documentId string, wordCount int) error
	SendWorkflowFailed(toEmail, docType, reason string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendWorkflowCompleted(toEmail, docType, documentId string, wordCount int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Your %s document is ready", docType))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Document Generation Complete</h2>
			<p>Your <strong>%s</strong> document has been generated and stored.</p>
			<p>Document ID: <code>%s</code></p>
			<p>Word count: %d</p>
			<p>You can retrieve it from the documents API or review it in the dashboard.</p>
		</div>
	`, docType, documentId, wordCount)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send completion notice to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Completion notice sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendWorkflowFailed(toEmail, docType, reason string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Document generation failed (%s)", docType))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Document Generation Failed</h2>
			<p>Generation of your <strong>%s</strong> document did not complete.</p>
			<p>Reason:</p>
			<p style="background-color: #f8d7da; padding: 10px; border-radius: 5px;">%s</p>
			<p>You can retry the request or adjust the input and submit again.</p>
		</div>
	`, docType, reason)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send failure notice to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Failure notice sent to %s\n", toEmail)
	return nil
}
