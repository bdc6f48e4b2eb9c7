package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/opentracing/opentracing-go"

	"github.com/vocalmail/voicestack/interfaces"
	voicestack_errors "github.com/vocalmail/voicestack/internal/errors"
	"github.com/vocalmail/voicestack/internal/models"
	"github.com/vocalmail/voicestack/internal/repository/filestore"
	"github.com/vocalmail/voicestack/internal/tracing"
)

// fileAccountRepository keeps the username -> email -> record mapping in
// memory and rewrites the whole blob after every successful mutation. A
// single RWMutex serializes the read-modify-persist sequence, so concurrent
// adds for the same user cannot lose an update.
type fileAccountRepository struct {
	store    *filestore.Store
	mu       sync.RWMutex
	accounts map[string]map[string]models.AccountRecord
}

func NewFileAccountRepository(store *filestore.Store) (interfaces.AccountRepository, error) {
	r := &fileAccountRepository{
		store:    store,
		accounts: make(map[string]map[string]models.AccountRecord),
	}
	if _, err := store.Load(&r.accounts); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *fileAccountRepository) ListAccounts(ctx context.Context, username string) ([]models.AccountListing, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "fileAccountRepository.ListAccounts")
	defer span.Finish()
	tracing.TagComponentRepository(span)
	tracing.TagUsername(span, username)

	r.mu.RLock()
	defer r.mu.RUnlock()

	listings := make([]models.AccountListing, 0, len(r.accounts[username]))
	for email, record := range r.accounts[username] {
		listings = append(listings, models.AccountListing{
			Email:     email,
			IsDefault: record.IsDefault,
		})
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].Email < listings[j].Email })

	return listings, nil
}

func (r *fileAccountRepository) GetAccount(ctx context.Context, username, email string) (*models.AccountRecord, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "fileAccountRepository.GetAccount")
	defer span.Finish()
	tracing.TagComponentRepository(span)
	tracing.TagUsername(span, username)

	r.mu.RLock()
	defer r.mu.RUnlock()

	userAccounts, ok := r.accounts[username]
	if !ok {
		return nil, voicestack_errors.ErrUserNotFound
	}
	record, ok := userAccounts[email]
	if !ok {
		return nil, voicestack_errors.ErrAccountNotFound
	}
	return &record, nil
}

func (r *fileAccountRepository) AccountExists(ctx context.Context, username, email string) (bool, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "fileAccountRepository.AccountExists")
	defer span.Finish()
	tracing.TagComponentRepository(span)

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.accounts[username][email]
	return ok, nil
}

func (r *fileAccountRepository) CreateAccount(ctx context.Context, username, email, password string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "fileAccountRepository.CreateAccount")
	defer span.Finish()
	tracing.TagComponentRepository(span)
	tracing.TagUsername(span, username)
	tracing.TagEmail(span, email)

	r.mu.Lock()
	defer r.mu.Unlock()

	userAccounts := r.accounts[username]
	if _, ok := userAccounts[email]; ok {
		return voicestack_errors.ErrDuplicateAccount
	}

	// Build the next state and persist it before committing in memory, so
	// a failed write leaves the store exactly as it was.
	next := make(map[string]map[string]models.AccountRecord, len(r.accounts))
	for user, accounts := range r.accounts {
		next[user] = accounts
	}
	updated := make(map[string]models.AccountRecord, len(userAccounts)+1)
	for e, rec := range userAccounts {
		updated[e] = rec
	}
	updated[email] = models.AccountRecord{
		Password:  password,
		IsDefault: len(userAccounts) == 0,
	}
	next[username] = updated

	if err := r.store.Save(next); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	r.accounts = next
	return nil
}
