package interfaces

import (
	"context"

	"github.com/vocalmail/voicestack/internal/models"
)

// FaceRepository is the injected store for face encodings, one per username.
type FaceRepository interface {
	// GetEncoding returns ErrFaceNotRegistered for unknown usernames.
	GetEncoding(ctx context.Context, username string) (models.FaceEncoding, error)

	// ListEncodings returns every stored encoding keyed by username.
	ListEncodings(ctx context.Context) (map[string]models.FaceEncoding, error)

	ListUsernames(ctx context.Context) ([]string, error)

	// SaveEncoding creates or overwrites the username's encoding and
	// persists the registry.
	SaveEncoding(ctx context.Context, username string, encoding models.FaceEncoding) error
}
