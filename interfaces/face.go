package interfaces

import (
	"context"

	"github.com/vocalmail/voicestack/internal/models"
)

// FaceEngine is the external face-detection library behind its documented
// contract: detect the faces in an image file and return one fixed-length
// descriptor per face, in detection order.
type FaceEngine interface {
	Encodings(ctx context.Context, imagePath string) ([]models.FaceEncoding, error)
}

// FaceService implements face enrollment and matching on top of a FaceEngine
// and a FaceRepository. Failure modes surface as the sentinel errors in
// internal/errors; anything else is an engine failure.
type FaceService interface {
	// RegisterFace enrolls the image's single face for the username.
	// Refused when the face already matches another user's encoding.
	RegisterFace(ctx context.Context, username string, image []byte) error

	// AuthenticateFace compares the image's first detected face against
	// the user's stored encoding.
	AuthenticateFace(ctx context.Context, username string, image []byte) error

	ListUsernames(ctx context.Context) ([]string, error)
}
