package config

import (
	"strings"

	"github.com/vocalmail/voicestack/internal/utils"
)

// Provider maps a family of email domains to its SMTP and IMAP endpoints.
// Domains are matched by substring against the domain part of the address;
// the first matching rule wins.
type Provider struct {
	Name           string
	DomainContains []string
	SMTPHost       string
	SMTPPort       int
	IMAPHost       string
	IMAPPort       int
}

// ProviderTable is the ordered provider routing table plus the documented
// fallback for unrecognized domains. The fallback differs per protocol:
// unrecognized domains authenticate outbound against Office365 and fetch
// inbound from Gmail. That asymmetry is part of the existing client
// contract, not an accident.
type ProviderTable struct {
	Providers []Provider

	DefaultSMTPHost string
	DefaultSMTPPort int
	DefaultIMAPHost string
	DefaultIMAPPort int
}

// DefaultProviderTable returns the built-in table covering the Gmail, Yahoo
// and Outlook families.
func DefaultProviderTable() *ProviderTable {
	return &ProviderTable{
		Providers: []Provider{
			{
				Name:           "gmail",
				DomainContains: []string{"gmail"},
				SMTPHost:       "smtp.gmail.com",
				SMTPPort:       587,
				IMAPHost:       "imap.gmail.com",
				IMAPPort:       993,
			},
			{
				Name:           "yahoo",
				DomainContains: []string{"yahoo"},
				SMTPHost:       "smtp.mail.yahoo.com",
				SMTPPort:       587,
				IMAPHost:       "imap.mail.yahoo.com",
				IMAPPort:       993,
			},
			{
				Name:           "outlook",
				DomainContains: []string{"outlook", "hotmail", "live"},
				SMTPHost:       "smtp.office365.com",
				SMTPPort:       587,
				IMAPHost:       "outlook.office365.com",
				IMAPPort:       993,
			},
		},
		DefaultSMTPHost: "smtp.office365.com",
		DefaultSMTPPort: 587,
		DefaultIMAPHost: "imap.gmail.com",
		DefaultIMAPPort: 993,
	}
}

func (t *ProviderTable) match(email string) *Provider {
	domain := utils.ExtractDomainFromEmail(email)
	if domain == "" {
		return nil
	}

	for i := range t.Providers {
		for _, fragment := range t.Providers[i].DomainContains {
			if strings.Contains(domain, fragment) {
				return &t.Providers[i]
			}
		}
	}
	return nil
}

// SMTPEndpoint resolves the outbound server for an address.
func (t *ProviderTable) SMTPEndpoint(email string) (string, int) {
	if p := t.match(email); p != nil {
		return p.SMTPHost, p.SMTPPort
	}
	return t.DefaultSMTPHost, t.DefaultSMTPPort
}

// IMAPEndpoint resolves the inbound server for an address.
func (t *ProviderTable) IMAPEndpoint(email string) (string, int) {
	if p := t.match(email); p != nil {
		return p.IMAPHost, p.IMAPPort
	}
	return t.DefaultIMAPHost, t.DefaultIMAPPort
}
