package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	voicestack_errors "github.com/vocalmail/voicestack/internal/errors"
	"github.com/vocalmail/voicestack/internal/repository/filestore"
)

func newTestAccountRepo(t *testing.T) *fileAccountRepository {
	t.Helper()
	store := filestore.New(filepath.Join(t.TempDir(), "accounts.json"), "")
	repo, err := NewFileAccountRepository(store)
	require.NoError(t, err)
	return repo.(*fileAccountRepository)
}

func TestListAccountsUnknownUserReturnsEmpty(t *testing.T) {
	repo := newTestAccountRepo(t)

	listings, err := repo.ListAccounts(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestFirstAccountIsDefault(t *testing.T) {
	repo := newTestAccountRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateAccount(ctx, "alice", "a@gmail.com", "pw1"))
	require.NoError(t, repo.CreateAccount(ctx, "alice", "b@yahoo.com", "pw2"))

	listings, err := repo.ListAccounts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "a@gmail.com", listings[0].Email)
	assert.True(t, listings[0].IsDefault)
	assert.Equal(t, "b@yahoo.com", listings[1].Email)
	assert.False(t, listings[1].IsDefault)
}

func TestDefaultIsPerUser(t *testing.T) {
	repo := newTestAccountRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateAccount(ctx, "alice", "a@gmail.com", "pw"))
	require.NoError(t, repo.CreateAccount(ctx, "bob", "b@gmail.com", "pw"))

	bobAccounts, err := repo.ListAccounts(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bobAccounts, 1)
	assert.True(t, bobAccounts[0].IsDefault)
}

func TestCreateAccountRejectsDuplicate(t *testing.T) {
	repo := newTestAccountRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateAccount(ctx, "alice", "a@gmail.com", "pw"))

	err := repo.CreateAccount(ctx, "alice", "a@gmail.com", "other-pw")
	assert.ErrorIs(t, err, voicestack_errors.ErrDuplicateAccount)

	listings, err := repo.ListAccounts(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestGetAccountErrors(t *testing.T) {
	repo := newTestAccountRepo(t)
	ctx := context.Background()

	_, err := repo.GetAccount(ctx, "nobody", "a@gmail.com")
	assert.ErrorIs(t, err, voicestack_errors.ErrUserNotFound)

	require.NoError(t, repo.CreateAccount(ctx, "alice", "a@gmail.com", "pw"))

	_, err = repo.GetAccount(ctx, "alice", "missing@gmail.com")
	assert.ErrorIs(t, err, voicestack_errors.ErrAccountNotFound)

	record, err := repo.GetAccount(ctx, "alice", "a@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, "pw", record.Password)
	assert.True(t, record.IsDefault)
}

func TestAccountExists(t *testing.T) {
	repo := newTestAccountRepo(t)
	ctx := context.Background()

	exists, err := repo.AccountExists(ctx, "alice", "a@gmail.com")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.CreateAccount(ctx, "alice", "a@gmail.com", "pw"))

	exists, err = repo.AccountExists(ctx, "alice", "a@gmail.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAccountsSurviveReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accounts.json")
	ctx := context.Background()

	first, err := NewFileAccountRepository(filestore.New(path, ""))
	require.NoError(t, err)
	require.NoError(t, first.CreateAccount(ctx, "alice", "a@gmail.com", "pw"))

	second, err := NewFileAccountRepository(filestore.New(path, ""))
	require.NoError(t, err)

	record, err := second.GetAccount(ctx, "alice", "a@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, "pw", record.Password)
}
