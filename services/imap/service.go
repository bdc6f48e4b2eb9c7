package imap

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"time"

	go_imap "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/jhillyerd/enmime"
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

// maxFetchCount caps how many unread messages a single fetch returns. The
// newest messages win, in mailbox order.
const maxFetchCount = 20

type imapService struct {
	providers *config.ProviderTable
	log       logger.Logger
}

func NewIMAPService(providers *config.ProviderTable, log logger.Logger) interfaces.IMAPService {
	return &imapService{
		providers: providers,
		log:       log,
	}
}

// FetchUnread connects to the provider resolved for the address, searches the
// inbox for unseen messages and returns summaries for at most maxFetchCount of
// them. Messages that fail to download or parse are skipped, not fatal.
func (s *imapService) FetchUnread(ctx context.Context, email, password string) ([]models.EmailSummary, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "imapService.FetchUnread")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEmail(span, email)

	host, port := s.providers.IMAPEndpoint(email)
	span.SetTag("imap_server", host)

	c, err := s.connectMailbox(ctx, host, port, email, password)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	defer c.Logout()

	_, err = c.Select("INBOX", false)
	if err != nil {
		err = fmt.Errorf("failed to select INBOX: %w", err)
		tracing.TraceErr(span, err)
		return nil, err
	}

	criteria := go_imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{go_imap.SeenFlag}

	ids, err := c.Search(criteria)
	if err != nil {
		err = fmt.Errorf("failed to search for unseen messages: %w", err)
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.SetTag("unseen_count", len(ids))

	if len(ids) == 0 {
		return []models.EmailSummary{}, nil
	}
	if len(ids) > maxFetchCount {
		ids = ids[len(ids)-maxFetchCount:]
	}

	seqSet := new(go_imap.SeqSet)
	seqSet.AddNum(ids...)

	section := &go_imap.BodySectionName{}
	items := []go_imap.FetchItem{section.FetchItem()}

	messages := make(chan *go_imap.Message, len(ids))
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, items, messages)
	}()

	summaries := make([]models.EmailSummary, 0, len(ids))
	for msg := range messages {
		raw := extractRawMessage(msg)
		if len(raw) == 0 {
			s.log.Warnf("Skipping message %d: empty body section", msg.SeqNum)
			continue
		}

		summary, err := SummarizeMessage(raw)
		if err != nil {
			s.log.Warnf("Skipping message %d: %v", msg.SeqNum, err)
			continue
		}
		summaries = append(summaries, *summary)
	}

	if err := <-done; err != nil {
		err = fmt.Errorf("failed to fetch messages: %w", err)
		tracing.TraceErr(span, err)
		return nil, err
	}

	return summaries, nil
}

func (s *imapService) connectMailbox(ctx context.Context, host string, port int, email, password string) (*client.Client, error) {
	serverAddr := fmt.Sprintf("%s:%d", host, port)

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	tlsConfig := &tls.Config{
		ServerName: host,
	}

	c, err := client.DialWithDialerTLS(dialer, serverAddr, tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", serverAddr, err)
	}

	c.Timeout = 30 * time.Second

	if err := c.Login(email, password); err != nil {
		c.Logout()
		return nil, errors.Wrap(voicestack_errors.ErrAuthenticationFailed, err.Error())
	}

	// No timeout for normal operations
	c.Timeout = 0

	return c, nil
}

// extractRawMessage pulls the full RFC822 content out of a fetched message.
func extractRawMessage(msg *go_imap.Message) []byte {
	var buffer bytes.Buffer

	for section, literal := range msg.Body {
		if section.Peek {
			continue
		}
		if len(section.Path) == 0 && section.Specifier == go_imap.EntireSpecifier {
			data, err := io.ReadAll(literal)
			if err == nil {
				buffer.Write(data)
				break
			}
		}
	}

	return buffer.Bytes()
}

// SummarizeMessage parses a raw message into sender, subject and a
// plain-text body. The body comes from the first non-attachment text part,
// with HTML reduced to text and whitespace collapsed.
func SummarizeMessage(raw []byte) (*models.EmailSummary, error) {
	envelope, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	return &models.EmailSummary{
		From:    envelope.GetHeader("From"),
		Subject: envelope.GetHeader("Subject"),
		Body:    extractBody(envelope),
	}, nil
}

// extractBody walks the MIME tree in order of appearance and takes the first
// text/plain or text/html part that is not an attachment. HTML is stripped
// down to its text content.
func extractBody(envelope *enmime.Envelope) string {
	part := envelope.Root.DepthMatchFirst(func(p *enmime.Part) bool {
		if p.Disposition == "attachment" {
			return false
		}
		return p.ContentType == "text/plain" || p.ContentType == "text/html"
	})

	var body string
	switch {
	case part != nil && part.ContentType == "text/html":
		body = utils.StripHTMLTags(string(part.Content))
	case part != nil:
		body = string(part.Content)
	case envelope.Text != "":
		body = envelope.Text
	case envelope.HTML != "":
		body = utils.StripHTMLTags(envelope.HTML)
	}

	return utils.CollapseWhitespace(body)
}
