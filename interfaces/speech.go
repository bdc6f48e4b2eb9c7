package interfaces

import "context"

// SpeechEngine is the external recognition/synthesis pair: pure
// request/response transforms between audio bytes and text.
type SpeechEngine interface {
	// Recognize transcribes the audio file at path.
	Recognize(ctx context.Context, audioPath string) (string, error)

	// Synthesize renders text as MPEG audio bytes.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// SpeechService wraps the engine with request-scoped scratch handling.
type SpeechService interface {
	SpeechToText(ctx context.Context, audio []byte) (string, error)
	TextToSpeech(ctx context.Context, text string) ([]byte, error)
}
