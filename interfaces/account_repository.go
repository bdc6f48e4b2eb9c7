package interfaces

import (
	"context"

	"github.com/vocalmail/voicestack/internal/models"
)

// AccountRepository is the injected store for per-user email accounts.
// Implementations serialize the whole store on every successful mutation and
// guard the read-modify-persist sequence with a mutation lock.
type AccountRepository interface {
	// ListAccounts returns the user's accounts, empty for unknown usernames.
	ListAccounts(ctx context.Context, username string) ([]models.AccountListing, error)

	// GetAccount returns the stored record, ErrUserNotFound or
	// ErrAccountNotFound otherwise.
	GetAccount(ctx context.Context, username, email string) (*models.AccountRecord, error)

	AccountExists(ctx context.Context, username, email string) (bool, error)

	// CreateAccount stores a new credential under its mutation lock. The
	// first account a user ever gets is marked default; re-adding an
	// existing email fails with ErrDuplicateAccount.
	CreateAccount(ctx context.Context, username, email, password string) error
}
