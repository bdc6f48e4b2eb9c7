package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/vocalmail/voicestack/interfaces"
	voicestack_errors "github.com/vocalmail/voicestack/internal/errors"
	"github.com/vocalmail/voicestack/internal/tracing"
)

type addAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type checkAccountRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// ListAccounts returns the user's registered email accounts.
func ListAccounts(accountService interfaces.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ListAccounts", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		username := c.Query("username")
		if username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing username parameter"})
			return
		}
		tracing.TagUsername(span, username)

		accounts, err := accountService.ListAccounts(ctx, username)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"accounts": accounts})
	}
}

// AddAccount validates credentials against the live SMTP server and stores
// them. Bad credentials map to 401, duplicates to 400, anything else to 500.
func AddAccount(accountService interfaces.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "AddAccount", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		var request addAccountRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing email, password or username"})
			return
		}
		if request.Email == "" || request.Password == "" || request.Username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing email, password or username"})
			return
		}
		tracing.TagUsername(span, request.Username)
		tracing.TagEmail(span, request.Email)

		err := accountService.AddAccount(ctx, request.Username, request.Email, request.Password)
		if err != nil {
			tracing.TraceErr(span, err)
			switch {
			case errors.Is(err, voicestack_errors.ErrDuplicateAccount):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Email account already registered for this user"})
			case errors.Is(err, voicestack_errors.ErrAuthenticationFailed):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed. Please check your email and password."})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add account: " + err.Error()})
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Account added successfully"})
	}
}

// CheckAccount reports whether the email is already registered for the user.
func CheckAccount(accountService interfaces.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "CheckAccount", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		var request checkAccountRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing email or username"})
			return
		}
		if request.Email == "" || request.Username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing email or username"})
			return
		}
		tracing.TagUsername(span, request.Username)
		tracing.TagEmail(span, request.Email)

		exists, err := accountService.AccountExists(ctx, request.Username, request.Email)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"exists": exists})
	}
}
