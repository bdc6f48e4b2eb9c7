package interfaces

import (
	"context"

	"github.com/vocalmail/voicestack/internal/models"
)

// AccountService manages a user's registered email accounts. AddAccount
// performs a live SMTP login probe before anything is stored; on any
// failure the store is left untouched.
type AccountService interface {
	ListAccounts(ctx context.Context, username string) ([]models.AccountListing, error)
	AddAccount(ctx context.Context, username, email, password string) error
	AccountExists(ctx context.Context, username, email string) (bool, error)
	GetCredential(ctx context.Context, username, email string) (*models.AccountRecord, error)
}
