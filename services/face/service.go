package face

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/vocalmail/voicestack/config"
	"github.com/vocalmail/voicestack/dto"
	"github.com/vocalmail/voicestack/interfaces"
	voicestack_errors "github.com/vocalmail/voicestack/internal/errors"
	"github.com/vocalmail/voicestack/internal/logger"
	"github.com/vocalmail/voicestack/internal/models"
	"github.com/vocalmail/voicestack/internal/tracing"
	"github.com/vocalmail/voicestack/internal/utils"
)

type faceService struct {
	engine     interfaces.FaceEngine
	faceRepo   interfaces.FaceRepository
	events     interfaces.EventPublisher
	tolerance  float64
	scratchDir string
	log        logger.Logger
}

func NewFaceService(
	engine interfaces.FaceEngine,
	faceRepo interfaces.FaceRepository,
	events interfaces.EventPublisher,
	cfg *config.FaceConfig,
	scratchDir string,
	log logger.Logger,
) interfaces.FaceService {
	return &faceService{
		engine:     engine,
		faceRepo:   faceRepo,
		events:     events,
		tolerance:  cfg.Tolerance,
		scratchDir: scratchDir,
		log:        log,
	}
}

// RegisterFace enrolls the single face in the image for the username.
// Re-registering an existing username overwrites its encoding, but a face
// that already matches a different user's encoding is refused.
func (s *faceService) RegisterFace(ctx context.Context, username string, image []byte) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "faceService.RegisterFace")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagUsername(span, username)

	encodings, err := s.encodeImage(ctx, "register", image)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	span.SetTag("faces_detected", len(encodings))

	if len(encodings) == 0 {
		return voicestack_errors.ErrNoFaceDetected
	}
	if len(encodings) > 1 {
		return voicestack_errors.ErrMultipleFacesDetected
	}

	candidate := encodings[0]
	if len(candidate) == 0 {
		return voicestack_errors.ErrEncodingFailed
	}

	stored, err := s.faceRepo.ListEncodings(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	for other, encoding := range stored {
		if other == username {
			continue
		}
		if encoding.Matches(candidate, s.tolerance) {
			tracing.TraceErr(span, voicestack_errors.ErrFaceAlreadyRegistered)
			return voicestack_errors.ErrFaceAlreadyRegistered
		}
	}

	_, overwrite := stored[username]

	if err := s.faceRepo.SaveEncoding(ctx, username, candidate); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	s.publishFaceRegistered(ctx, username, overwrite)

	s.log.Infof("Face registered for user %s", username)
	return nil
}

// AuthenticateFace compares the first detected face in the image against the
// user's stored encoding. Unknown usernames fail before any detection runs.
func (s *faceService) AuthenticateFace(ctx context.Context, username string, image []byte) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "faceService.AuthenticateFace")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagUsername(span, username)

	stored, err := s.faceRepo.GetEncoding(ctx, username)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	encodings, err := s.encodeImage(ctx, "auth", image)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	span.SetTag("faces_detected", len(encodings))

	if len(encodings) == 0 {
		return voicestack_errors.ErrNoFaceDetected
	}

	// Multiple faces are tolerated here, the first one is compared.
	candidate := encodings[0]
	if len(candidate) == 0 {
		return voicestack_errors.ErrEncodingFailed
	}

	if !stored.Matches(candidate, s.tolerance) {
		return voicestack_errors.ErrFaceMismatch
	}

	return nil
}

func (s *faceService) ListUsernames(ctx context.Context) ([]string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "faceService.ListUsernames")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	return s.faceRepo.ListUsernames(ctx)
}

// encodeImage parks the upload in a uniquely named scratch file for the
// duration of the engine call.
func (s *faceService) encodeImage(ctx context.Context, prefix string, image []byte) ([]models.FaceEncoding, error) {
	scratch, err := utils.NewScratchFile(s.scratchDir, prefix+"-face", ".jpg", image)
	if err != nil {
		return nil, err
	}
	defer scratch.Remove()

	encodings, err := s.engine.Encodings(ctx, scratch.Path)
	if err != nil {
		return nil, errors.Wrap(err, "face engine failed")
	}
	return encodings, nil
}

func (s *faceService) publishFaceRegistered(ctx context.Context, username string, overwrite bool) {
	if s.events == nil {
		return
	}

	event := dto.FaceRegisteredEvent{
		ID:        utils.GenerateEventID(),
		Username:  username,
		Overwrite: overwrite,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.events.PublishFaceRegistered(ctx, event); err != nil {
		s.log.Warnf("Failed to publish face registered event: %v", err)
	}
}
