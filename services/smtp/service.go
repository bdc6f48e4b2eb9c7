package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/vocalmail/voicestack/config"
	"github.com/vocalmail/voicestack/interfaces"
	voicestack_errors "github.com/vocalmail/voicestack/internal/errors"
	"github.com/vocalmail/voicestack/internal/logger"
	"github.com/vocalmail/voicestack/internal/models"
	"github.com/vocalmail/voicestack/internal/tracing"
	"github.com/vocalmail/voicestack/internal/utils"
)

const dialTimeout = 30 * time.Second

type smtpService struct {
	providers *config.ProviderTable
	log       logger.Logger
}

func NewSMTPService(providers *config.ProviderTable, log logger.Logger) interfaces.SMTPService {
	return &smtpService{
		providers: providers,
		log:       log,
	}
}

// VerifyLogin opens an outbound session for the address, authenticates and
// quits. A rejected login surfaces as ErrAuthenticationFailed so callers
// can distinguish bad credentials from transport trouble.
func (s *smtpService) VerifyLogin(ctx context.Context, email, password string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "smtpService.VerifyLogin")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEmail(span, email)

	host, port := s.providers.SMTPEndpoint(email)
	span.SetTag("smtp_server", host)

	client, err := s.connectSTARTTLS(ctx, host, port)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	defer client.Close()

	auth := smtp.PlainAuth("", email, password, host)
	if err := client.Auth(auth); err != nil {
		err = errors.Wrap(voicestack_errors.ErrAuthenticationFailed, err.Error())
		tracing.TraceErr(span, err)
		return err
	}

	return client.Quit()
}

// Send transmits a single plain-text message through the provider resolved
// for the sender address.
func (s *smtpService) Send(ctx context.Context, email *models.OutboundEmail, password string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "smtpService.Send")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEmail(span, email.FromAddress)

	if email.FromAddress == "" || email.ToAddress == "" {
		err := fmt.Errorf("from and to addresses are required")
		tracing.TraceErr(span, err)
		return err
	}

	host, port := s.providers.SMTPEndpoint(email.FromAddress)
	span.SetTag("smtp_server", host)

	buffer := s.buildMessage(email)

	client, err := s.connectSTARTTLS(ctx, host, port)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	defer client.Close()

	auth := smtp.PlainAuth("", email.FromAddress, password, host)
	if err := client.Auth(auth); err != nil {
		err = errors.Wrap(voicestack_errors.ErrAuthenticationFailed, err.Error())
		tracing.TraceErr(span, err)
		return err
	}

	if err := client.Mail(email.FromAddress); err != nil {
		err = fmt.Errorf("SMTP MAIL command failed: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	if err := client.Rcpt(email.ToAddress); err != nil {
		err = fmt.Errorf("SMTP RCPT command failed for %s: %w", email.ToAddress, err)
		tracing.TraceErr(span, err)
		return err
	}

	dataWriter, err := client.Data()
	if err != nil {
		err = fmt.Errorf("SMTP DATA command failed: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	if _, err := dataWriter.Write(buffer.Bytes()); err != nil {
		err = fmt.Errorf("failed to write email data: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	if err := dataWriter.Close(); err != nil {
		err = fmt.Errorf("failed to close data writer: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	s.log.Infof("Email sent from %s to %s", email.FromAddress, email.ToAddress)
	return client.Quit()
}

// connectSTARTTLS dials the server without TLS and upgrades before any
// credentials travel.
func (s *smtpService) connectSTARTTLS(ctx context.Context, host string, port int) (*smtp.Client, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	dialer := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: dialTimeout,
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	tlsConfig := &tls.Config{
		ServerName: host,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start TLS: %w", err)
	}

	return client, nil
}

func (s *smtpService) buildMessage(email *models.OutboundEmail) *bytes.Buffer {
	headers := [][2]string{
		{"From", email.FromAddress},
		{"To", email.ToAddress},
		{"Subject", email.Subject},
		{"Date", time.Now().UTC().Format(time.RFC1123Z)},
		{"Message-ID", fmt.Sprintf("<%s@%s>", utils.GenerateEventID(), utils.ExtractDomainFromEmail(email.FromAddress))},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=UTF-8"},
	}

	buffer := bytes.NewBuffer(nil)
	for _, h := range headers {
		buffer.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	buffer.WriteString("\r\n")
	buffer.WriteString(email.Body)
	return buffer
}
