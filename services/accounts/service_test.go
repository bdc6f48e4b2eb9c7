package accounts

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	voicestack_errors "github.com/vocalmail/voicestack/internal/errors"
	"github.com/vocalmail/voicestack/internal/logger"
	"github.com/vocalmail/voicestack/internal/models"
	"github.com/vocalmail/voicestack/internal/repository"
	"github.com/vocalmail/voicestack/internal/repository/filestore"
	"github.com/vocalmail/voicestack/services/events"
)

// stubSMTPService records probe calls without talking to a real server.
type stubSMTPService struct {
	verifyErr   error
	verifyCalls int
}

func (s *stubSMTPService) VerifyLogin(ctx context.Context, email, password string) error {
	s.verifyCalls++
	return s.verifyErr
}

func (s *stubSMTPService) Send(ctx context.Context, email *models.OutboundEmail, password string) error {
	return nil
}

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true})
	appLogger.InitLogger()
	return appLogger
}

func newTestService(t *testing.T, smtp *stubSMTPService) (*accountService, *stubSMTPService) {
	t.Helper()
	if smtp == nil {
		smtp = &stubSMTPService{}
	}
	store := filestore.New(t.TempDir()+"/accounts.json", "")
	repo, err := repository.NewFileAccountRepository(store)
	require.NoError(t, err)
	svc := NewAccountService(repo, smtp, events.NewNoopPublisher(), getLogger()).(*accountService)
	return svc, smtp
}

func TestAddAccountAndList(t *testing.T) {
	svc, smtp := newTestService(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.AddAccount(ctx, "alice", "Alice@Gmail.com", "pw"))
	assert.Equal(t, 1, smtp.verifyCalls)

	listings, err := svc.ListAccounts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "alice@gmail.com", listings[0].Email)
	assert.True(t, listings[0].IsDefault)
}

func TestAddAccountInvalidEmail(t *testing.T) {
	svc, smtp := newTestService(t, nil)

	err := svc.AddAccount(context.Background(), "alice", "not-an-email", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email address")
	assert.Equal(t, 0, smtp.verifyCalls)
}

func TestAddAccountDuplicate(t *testing.T) {
	svc, smtp := newTestService(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.AddAccount(ctx, "alice", "a@gmail.com", "pw"))

	err := svc.AddAccount(ctx, "alice", "A@gmail.com", "pw2")
	assert.ErrorIs(t, err, voicestack_errors.ErrDuplicateAccount)
	assert.Equal(t, 1, smtp.verifyCalls)
}

func TestAddAccountBadCredentialsNotStored(t *testing.T) {
	probeErr := errors.Wrap(voicestack_errors.ErrAuthenticationFailed, "535 5.7.8 bad credentials")
	svc, _ := newTestService(t, &stubSMTPService{verifyErr: probeErr})
	ctx := context.Background()

	err := svc.AddAccount(ctx, "alice", "a@gmail.com", "wrong")
	assert.ErrorIs(t, err, voicestack_errors.ErrAuthenticationFailed)

	exists, err := svc.AccountExists(ctx, "alice", "a@gmail.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetCredential(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.AddAccount(ctx, "alice", "a@gmail.com", "pw"))

	record, err := svc.GetCredential(ctx, "alice", "A@Gmail.com ")
	require.NoError(t, err)
	assert.Equal(t, "pw", record.Password)
	assert.True(t, record.IsDefault)

	exists, err := svc.AccountExists(ctx, "alice", "A@Gmail.com ")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = svc.GetCredential(ctx, "alice", "other@gmail.com")
	assert.ErrorIs(t, err, voicestack_errors.ErrAccountNotFound)

	_, err = svc.GetCredential(ctx, "bob", "a@gmail.com")
	assert.ErrorIs(t, err, voicestack_errors.ErrUserNotFound)
}
