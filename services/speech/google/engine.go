package google

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/vocalmail/voicestack/config"
	"github.com/vocalmail/voicestack/interfaces"
)

// Engine talks to the Google speech endpoints over plain HTTP. Recognition
// posts the audio body to the v2 recognize API, synthesis fetches MPEG audio
// from the translate TTS endpoint.
type Engine struct {
	client *resty.Client
	cfg    *config.SpeechConfig
}

func NewEngine(cfg *config.SpeechConfig) *Engine {
	return &Engine{
		client: resty.New().SetTimeout(30 * time.Second),
		cfg:    cfg,
	}
}

var _ interfaces.SpeechEngine = (*Engine)(nil)

type recognizeResult struct {
	Result []struct {
		Alternative []struct {
			Transcript string `json:"transcript"`
		} `json:"alternative"`
	} `json:"result"`
}

// Recognize uploads the WAV file and returns the first transcript the API
// offers. The endpoint streams one JSON object per line; the first line with
// a non-empty result wins.
func (e *Engine) Recognize(ctx context.Context, audioPath string) (string, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to read audio file")
	}

	response, err := e.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "audio/l16; rate=16000").
		SetQueryParam("client", "chromium").
		SetQueryParam("lang", e.cfg.Language).
		SetQueryParam("key", e.cfg.RecognizeKey).
		SetBody(audio).
		Post(e.cfg.RecognizeURL)
	if err != nil {
		return "", errors.Wrap(err, "speech recognition request failed")
	}
	if response.StatusCode() != 200 {
		return "", fmt.Errorf("speech recognition returned status %d", response.StatusCode())
	}

	return parseRecognizeResponse(response.Body())
}

// parseRecognizeResponse scans the line-delimited JSON stream for the first
// transcript.
func parseRecognizeResponse(body []byte) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var result recognizeResult
		if err := json.Unmarshal(line, &result); err != nil {
			continue
		}
		for _, r := range result.Result {
			if len(r.Alternative) > 0 && r.Alternative[0].Transcript != "" {
				return r.Alternative[0].Transcript, nil
			}
		}
	}

	return "", nil
}

// Synthesize fetches MPEG audio for the text.
func (e *Engine) Synthesize(ctx context.Context, text string) ([]byte, error) {
	response, err := e.client.R().
		SetContext(ctx).
		SetQueryParam("ie", "UTF-8").
		SetQueryParam("client", "tw-ob").
		SetQueryParam("tl", e.cfg.Language).
		SetQueryParam("q", text).
		Get(e.cfg.SynthesizeURL)
	if err != nil {
		return nil, errors.Wrap(err, "speech synthesis request failed")
	}
	if response.StatusCode() != 200 {
		return nil, fmt.Errorf("speech synthesis returned status %d", response.StatusCode())
	}

	return response.Body(), nil
}
