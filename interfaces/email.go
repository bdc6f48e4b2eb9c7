package interfaces

import (
	"context"

	"github.com/vocalmail/voicestack/internal/models"
)

// SMTPService talks to outbound mail servers resolved from the provider
// table.
type SMTPService interface {
	// VerifyLogin opens a session, authenticates and quits. Used as the
	// credential probe before an account is stored.
	VerifyLogin(ctx context.Context, email, password string) error

	// Send transmits a single plain-text message.
	Send(ctx context.Context, email *models.OutboundEmail, password string) error
}

// IMAPService retrieves unread mail from inbound servers resolved from the
// provider table.
type IMAPService interface {
	// FetchUnread returns summaries for at most the 20 most recent unseen
	// messages, skipping any message that fails to parse.
	FetchUnread(ctx context.Context, email, password string) ([]models.EmailSummary, error)
}

// EmailService bridges stored credentials to the mail protocol sessions.
type EmailService interface {
	Send(ctx context.Context, username, fromEmail, toEmail, subject, body string) error
	FetchUnread(ctx context.Context, username, email string) ([]models.EmailSummary, error)
}
