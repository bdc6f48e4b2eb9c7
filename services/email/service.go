package email

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/vocalmail/voicestack/dto"
	"github.com/vocalmail/voicestack/interfaces"
	"github.com/vocalmail/voicestack/internal/logger"
	"github.com/vocalmail/voicestack/internal/models"
	"github.com/vocalmail/voicestack/internal/tracing"
	"github.com/vocalmail/voicestack/internal/utils"
)

// emailService resolves stored credentials and drives the protocol sessions.
// Unknown users and accounts surface as the repository sentinels before any
// server is contacted.
type emailService struct {
	accountService interfaces.AccountService
	smtpService    interfaces.SMTPService
	imapService    interfaces.IMAPService
	events         interfaces.EventPublisher
	log            logger.Logger
}

func NewEmailService(
	accountService interfaces.AccountService,
	smtpService interfaces.SMTPService,
	imapService interfaces.IMAPService,
	events interfaces.EventPublisher,
	log logger.Logger,
) interfaces.EmailService {
	return &emailService{
		accountService: accountService,
		smtpService:    smtpService,
		imapService:    imapService,
		events:         events,
		log:            log,
	}
}

func (s *emailService) Send(ctx context.Context, username, fromEmail, toEmail, subject, body string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailService.Send")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagUsername(span, username)
	tracing.TagEmail(span, fromEmail)

	record, err := s.accountService.GetCredential(ctx, username, fromEmail)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	outbound := &models.OutboundEmail{
		FromAddress: fromEmail,
		ToAddress:   toEmail,
		Subject:     subject,
		Body:        body,
	}

	if err := s.smtpService.Send(ctx, outbound, record.Password); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	s.publishEmailSent(ctx, username, outbound)
	return nil
}

func (s *emailService) FetchUnread(ctx context.Context, username, email string) ([]models.EmailSummary, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailService.FetchUnread")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagUsername(span, username)
	tracing.TagEmail(span, email)

	record, err := s.accountService.GetCredential(ctx, username, email)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	summaries, err := s.imapService.FetchUnread(ctx, email, record.Password)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return summaries, nil
}

func (s *emailService) publishEmailSent(ctx context.Context, username string, email *models.OutboundEmail) {
	if s.events == nil {
		return
	}

	event := dto.EmailSentEvent{
		ID:          utils.GenerateEventID(),
		Username:    username,
		FromAddress: email.FromAddress,
		ToAddress:   email.ToAddress,
		Subject:     email.Subject,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.events.PublishEmailSent(ctx, event); err != nil {
		s.log.Warnf("Failed to publish email sent event: %v", err)
	}
}
