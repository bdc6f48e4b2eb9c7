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

// fileFaceRepository holds one encoding per username, rewritten wholesale on
// every mutation.
type fileFaceRepository struct {
	store     *filestore.Store
	mu        sync.RWMutex
	encodings map[string]models.FaceEncoding
}

func NewFileFaceRepository(store *filestore.Store) (interfaces.FaceRepository, error) {
	r := &fileFaceRepository{
		store:     store,
		encodings: make(map[string]models.FaceEncoding),
	}
	if _, err := store.Load(&r.encodings); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *fileFaceRepository) GetEncoding(ctx context.Context, username string) (models.FaceEncoding, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "fileFaceRepository.GetEncoding")
	defer span.Finish()
	tracing.TagComponentRepository(span)
	tracing.TagUsername(span, username)

	r.mu.RLock()
	defer r.mu.RUnlock()

	encoding, ok := r.encodings[username]
	if !ok {
		return nil, voicestack_errors.ErrFaceNotRegistered
	}
	return encoding, nil
}

func (r *fileFaceRepository) ListEncodings(ctx context.Context) (map[string]models.FaceEncoding, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "fileFaceRepository.ListEncodings")
	defer span.Finish()
	tracing.TagComponentRepository(span)

	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[string]models.FaceEncoding, len(r.encodings))
	for username, encoding := range r.encodings {
		snapshot[username] = encoding
	}
	return snapshot, nil
}

func (r *fileFaceRepository) ListUsernames(ctx context.Context) ([]string, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "fileFaceRepository.ListUsernames")
	defer span.Finish()
	tracing.TagComponentRepository(span)

	r.mu.RLock()
	defer r.mu.RUnlock()

	usernames := make([]string, 0, len(r.encodings))
	for username := range r.encodings {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)
	return usernames, nil
}

func (r *fileFaceRepository) SaveEncoding(ctx context.Context, username string, encoding models.FaceEncoding) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "fileFaceRepository.SaveEncoding")
	defer span.Finish()
	tracing.TagComponentRepository(span)
	tracing.TagUsername(span, username)

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]models.FaceEncoding, len(r.encodings)+1)
	for user, enc := range r.encodings {
		next[user] = enc
	}
	next[username] = encoding

	if err := r.store.Save(next); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	r.encodings = next
	return nil
}
