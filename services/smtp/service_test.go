package smtp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocalmail/voicestack/config"
	"github.com/vocalmail/voicestack/internal/logger"
	"github.com/vocalmail/voicestack/internal/models"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true})
	appLogger.InitLogger()
	return appLogger
}

func TestBuildMessageHeaders(t *testing.T) {
	svc := NewSMTPService(config.DefaultProviderTable(), getLogger()).(*smtpService)

	buffer := svc.buildMessage(&models.OutboundEmail{
		FromAddress: "alice@gmail.com",
		ToAddress:   "bob@yahoo.com",
		Subject:     "Lunch",
		Body:        "Meet at noon?",
	})
	message := buffer.String()

	headerPart, bodyPart, found := strings.Cut(message, "\r\n\r\n")
	require.True(t, found, "message must separate headers from body with a blank line")
	assert.Equal(t, "Meet at noon?", bodyPart)

	lines := strings.Split(headerPart, "\r\n")
	require.GreaterOrEqual(t, len(lines), 7)
	assert.Equal(t, "From: alice@gmail.com", lines[0])
	assert.Equal(t, "To: bob@yahoo.com", lines[1])
	assert.Equal(t, "Subject: Lunch", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "Date: "))
	assert.True(t, strings.HasPrefix(lines[4], "Message-ID: <"))
	assert.True(t, strings.HasSuffix(lines[4], "@gmail.com>"))
	assert.Equal(t, "MIME-Version: 1.0", lines[5])
	assert.Equal(t, "Content-Type: text/plain; charset=UTF-8", lines[6])
}

func TestBuildMessageUniqueMessageIDs(t *testing.T) {
	svc := NewSMTPService(config.DefaultProviderTable(), getLogger()).(*smtpService)
	email := &models.OutboundEmail{
		FromAddress: "alice@gmail.com",
		ToAddress:   "bob@yahoo.com",
		Subject:     "Lunch",
		Body:        "Meet at noon?",
	}

	first := svc.buildMessage(email).String()
	second := svc.buildMessage(email).String()
	assert.NotEqual(t, first, second)
}
