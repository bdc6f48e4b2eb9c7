package speech

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/vocalmail/voicestack/interfaces"
	"github.com/vocalmail/voicestack/internal/logger"
	"github.com/vocalmail/voicestack/internal/tracing"
	"github.com/vocalmail/voicestack/internal/utils"
)

type speechService struct {
	engine     interfaces.SpeechEngine
	scratchDir string
	log        logger.Logger
}

func NewSpeechService(engine interfaces.SpeechEngine, scratchDir string, log logger.Logger) interfaces.SpeechService {
	return &speechService{
		engine:     engine,
		scratchDir: scratchDir,
		log:        log,
	}
}

// SpeechToText parks the uploaded audio in a scratch file and hands it to the
// recognition engine. An empty transcription is an error, not a result.
func (s *speechService) SpeechToText(ctx context.Context, audio []byte) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "speechService.SpeechToText")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("audio_bytes", len(audio))

	if len(audio) == 0 {
		err := errors.New("no audio data provided")
		tracing.TraceErr(span, err)
		return "", err
	}

	scratch, err := utils.NewScratchFile(s.scratchDir, "speech", ".wav", audio)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}
	defer scratch.Remove()

	text, err := s.engine.Recognize(ctx, scratch.Path)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}
	if text == "" {
		err = errors.New("could not recognize speech")
		tracing.TraceErr(span, err)
		return "", err
	}

	return text, nil
}

// TextToSpeech renders text as MPEG audio through the synthesis engine.
func (s *speechService) TextToSpeech(ctx context.Context, text string) ([]byte, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "speechService.TextToSpeech")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("text_length", len(text))

	if text == "" {
		err := errors.New("no text provided")
		tracing.TraceErr(span, err)
		return nil, err
	}

	audio, err := s.engine.Synthesize(ctx, text)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if len(audio) == 0 {
		err = errors.New("synthesis returned no audio")
		tracing.TraceErr(span, err)
		return nil, err
	}

	return audio, nil
}
