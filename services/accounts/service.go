package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/vocalmail/voicestack/dto"
	"github.com/vocalmail/voicestack/interfaces"
	voicestack_errors "github.com/vocalmail/voicestack/internal/errors"
	"github.com/vocalmail/voicestack/internal/logger"
	"github.com/vocalmail/voicestack/internal/models"
	"github.com/vocalmail/voicestack/internal/tracing"
	"github.com/vocalmail/voicestack/internal/utils"
)

type accountService struct {
	accountRepo interfaces.AccountRepository
	smtpService interfaces.SMTPService
	events      interfaces.EventPublisher
	log         logger.Logger
}

func NewAccountService(
	accountRepo interfaces.AccountRepository,
	smtpService interfaces.SMTPService,
	events interfaces.EventPublisher,
	log logger.Logger,
) interfaces.AccountService {
	return &accountService{
		accountRepo: accountRepo,
		smtpService: smtpService,
		events:      events,
		log:         log,
	}
}

func (s *accountService) ListAccounts(ctx context.Context, username string) ([]models.AccountListing, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "accountService.ListAccounts")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagUsername(span, username)

	listings, err := s.accountRepo.ListAccounts(ctx, username)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.SetTag("account_count", len(listings))

	return listings, nil
}

// AddAccount validates the address, probes the credentials against the live
// SMTP server and only then stores them. A failed probe or a failed write
// leaves the store exactly as it was.
func (s *accountService) AddAccount(ctx context.Context, username, email, password string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "accountService.AddAccount")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagUsername(span, username)
	tracing.TagEmail(span, email)

	email = strings.ToLower(strings.TrimSpace(email))

	syntax := mailvalidate.ValidateEmailSyntax(email)
	if !syntax.IsValid {
		err := errors.Errorf("invalid email address: %s", email)
		tracing.TraceErr(span, err)
		return err
	}

	exists, err := s.accountRepo.AccountExists(ctx, username, email)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if exists {
		tracing.TraceErr(span, voicestack_errors.ErrDuplicateAccount)
		return voicestack_errors.ErrDuplicateAccount
	}

	if err := s.smtpService.VerifyLogin(ctx, email, password); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	if err := s.accountRepo.CreateAccount(ctx, username, email, password); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	record, err := s.accountRepo.GetAccount(ctx, username, email)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	s.publishAccountAdded(ctx, username, email, record.IsDefault)

	s.log.Infof("Email account %s added for user %s", email, username)
	return nil
}

func (s *accountService) AccountExists(ctx context.Context, username, email string) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "accountService.AccountExists")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagUsername(span, username)
	tracing.TagEmail(span, email)

	return s.accountRepo.AccountExists(ctx, username, strings.ToLower(strings.TrimSpace(email)))
}

func (s *accountService) GetCredential(ctx context.Context, username, email string) (*models.AccountRecord, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "accountService.GetCredential")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagUsername(span, username)
	tracing.TagEmail(span, email)

	record, err := s.accountRepo.GetAccount(ctx, username, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return record, nil
}

func (s *accountService) publishAccountAdded(ctx context.Context, username, email string, isDefault bool) {
	if s.events == nil {
		return
	}

	event := dto.AccountAddedEvent{
		ID:        utils.GenerateEventID(),
		Username:  username,
		Email:     email,
		IsDefault: isDefault,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.events.PublishAccountAdded(ctx, event); err != nil {
		s.log.Warnf("Failed to publish account added event: %v", err)
	}
}
