// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"
	"os"

	"github.com/flowbuild/flowbuild-go/internal/infrastructure/email/templates"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendEditorInviteEmail(toEmail, projectID, inviteURL string) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := os.Getenv("FLOWBUILD_EMAIL_FROM")
	if fromEmail == "" {
		fromEmail = "noreply@flowbuild.dev"
	}

	fromName := os.Getenv("FLOWBUILD_EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "FlowBuild"
	}

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

// SendEditorInviteEmail composes and sends an editor invitation email.
func (c *ResendClient) SendEditorInviteEmail(toEmail, projectID, inviteURL string) error {
	subject := "You have been invited to edit a FlowBuild site"

	content := templates.GetInviteEmailContent(templates.InviteEmailProps{
		Name:            "there",
		InviteURL:       inviteURL,
		ProjectID:       projectID,
		ExpirationHours: 48,
	})

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Content: content,
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send invite email via Resend: %w", err)
	}

	return nil
}
