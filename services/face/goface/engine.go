package goface

import (
	"context"

	"github.com/Kagami/go-face"
	"github.com/pkg/errors"

	"github.com/vocalmail/voicestack/interfaces"
	"github.com/vocalmail/voicestack/internal/models"
)

// Engine wraps the dlib-backed recognizer. The models directory must hold
// the shape predictor, the face recognition net and the CNN detector files
// the recognizer loads at startup.
type Engine struct {
	rec *face.Recognizer
}

func NewEngine(modelsDir string) (*Engine, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load face models from %s", modelsDir)
	}
	return &Engine{rec: rec}, nil
}

var _ interfaces.FaceEngine = (*Engine)(nil)

// Encodings detects every face in the image file and returns one descriptor
// per face, in detection order.
func (e *Engine) Encodings(ctx context.Context, imagePath string) ([]models.FaceEncoding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	faces, err := e.rec.RecognizeFile(imagePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to recognize image")
	}

	encodings := make([]models.FaceEncoding, 0, len(faces))
	for _, f := range faces {
		encoding := make(models.FaceEncoding, len(f.Descriptor))
		for i, v := range f.Descriptor {
			encoding[i] = float64(v)
		}
		encodings = append(encodings, encoding)
	}

	return encodings, nil
}

func (e *Engine) Close() {
	e.rec.Close()
}
