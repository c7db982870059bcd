package notify

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailSender delivers a rendered notification by email.
type EmailSender interface {
	SendEmail(to, toName, subject, plainText, htmlContent string) error
}

type sendGridSender struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) EmailSender {
	return &sendGridSender{apiKey: apiKey, fromEmail: fromEmail, fromName: fromName}
}

func (s *sendGridSender) SendEmail(to, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}
