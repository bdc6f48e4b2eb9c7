package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/vocalmail/voicestack/interfaces"
	voicestack_errors "github.com/vocalmail/voicestack/internal/errors"
	"github.com/vocalmail/voicestack/internal/metrics"
	"github.com/vocalmail/voicestack/internal/tracing"
)

type sendEmailRequest struct {
	FromEmail string `json:"from_email"`
	ToEmail   string `json:"to_email"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Username  string `json:"username"`
}

type readUnreadRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// SendEmail transmits a single plain-text message through the user's stored
// account for the sender address.
func SendEmail(emailService interfaces.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "SendEmail", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		var request sendEmailRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No data provided"})
			return
		}
		if request.FromEmail == "" || request.ToEmail == "" || request.Subject == "" || request.Body == "" || request.Username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required email information. Need from_email, to_email, subject, body, and username"})
			return
		}
		tracing.TagUsername(span, request.Username)
		tracing.TagEmail(span, request.FromEmail)

		err := emailService.Send(ctx, request.Username, request.FromEmail, request.ToEmail, request.Subject, request.Body)
		if err != nil {
			tracing.TraceErr(span, err)
			switch {
			case errors.Is(err, voicestack_errors.ErrUserNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User %s not found. Please log in again.", request.Username)})
			case errors.Is(err, voicestack_errors.ErrAccountNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Sender email %s not found in accounts for user %s. Please add the account first.", request.FromEmail, request.Username)})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email: " + err.Error()})
			}
			return
		}

		metrics.EmailsSentMetricsCount.Inc()
		c.JSON(http.StatusOK, gin.H{"message": "Email sent successfully"})
	}
}

// ReadUnreadEmails returns summaries for the newest unseen messages in the
// account's inbox.
func ReadUnreadEmails(emailService interfaces.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ReadUnreadEmails", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		var request readUnreadRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing email account or username information"})
			return
		}
		if request.Email == "" || request.Username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing email account or username information"})
			return
		}
		tracing.TagUsername(span, request.Username)
		tracing.TagEmail(span, request.Email)

		emails, err := emailService.FetchUnread(ctx, request.Username, request.Email)
		if err != nil {
			tracing.TraceErr(span, err)
			switch {
			case errors.Is(err, voicestack_errors.ErrUserNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User %s not found. Please log in again.", request.Username)})
			case errors.Is(err, voicestack_errors.ErrAccountNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Email %s not found in accounts for user %s. Please add the account first.", request.Email, request.Username)})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read unread emails: " + err.Error()})
			}
			return
		}

		metrics.EmailFetchesMetricsCount.Inc()
		c.JSON(http.StatusOK, gin.H{"emails": emails})
	}
}
