package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMTPEndpoint(t *testing.T) {
	table := DefaultProviderTable()

	tests := []struct {
		email    string
		wantHost string
		wantPort int
	}{
		{"user@gmail.com", "smtp.gmail.com", 587},
		{"user@yahoo.com", "smtp.mail.yahoo.com", 587},
		{"user@outlook.com", "smtp.office365.com", 587},
		{"user@hotmail.com", "smtp.office365.com", 587},
		{"user@live.com", "smtp.office365.com", 587},
		{"user@example.org", "smtp.office365.com", 587},
	}

	for _, tt := range tests {
		host, port := table.SMTPEndpoint(tt.email)
		assert.Equal(t, tt.wantHost, host, tt.email)
		assert.Equal(t, tt.wantPort, port, tt.email)
	}
}

func TestIMAPEndpoint(t *testing.T) {
	table := DefaultProviderTable()

	tests := []struct {
		email    string
		wantHost string
		wantPort int
	}{
		{"user@gmail.com", "imap.gmail.com", 993},
		{"user@yahoo.co.uk", "imap.mail.yahoo.com", 993},
		{"user@outlook.com", "outlook.office365.com", 993},
		{"user@hotmail.de", "outlook.office365.com", 993},
		// Unrecognized domains fall back to the Gmail server for inbound
		{"user@example.org", "imap.gmail.com", 993},
	}

	for _, tt := range tests {
		host, port := table.IMAPEndpoint(tt.email)
		assert.Equal(t, tt.wantHost, host, tt.email)
		assert.Equal(t, tt.wantPort, port, tt.email)
	}
}

func TestProviderMatchIsSubstringBased(t *testing.T) {
	table := DefaultProviderTable()

	// "gmail" anywhere in the domain routes to the Gmail provider
	host, _ := table.IMAPEndpoint("user@mygmail.example.com")
	assert.Equal(t, "imap.gmail.com", host)
}

func TestProviderMatchHandlesDisplayNames(t *testing.T) {
	table := DefaultProviderTable()

	host, _ := table.SMTPEndpoint("Some User <user@gmail.com>")
	assert.Equal(t, "smtp.gmail.com", host)
}
