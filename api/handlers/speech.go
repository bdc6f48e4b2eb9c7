package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vocalmail/voicestack/interfaces"
	"github.com/vocalmail/voicestack/internal/tracing"
)

type textToSpeechRequest struct {
	Text string `json:"text"`
}

// SpeechToText transcribes the uploaded audio file.
func SpeechToText(speechService interfaces.SpeechService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "SpeechToText", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		fileHeader, err := c.FormFile("audio")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No audio file provided"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer file.Close()

		audio, err := io.ReadAll(file)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		text, err := speechService.SpeechToText(ctx, audio)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"text": text})
	}
}

// TextToSpeech renders the text as raw MPEG audio bytes.
func TextToSpeech(speechService interfaces.SpeechService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "TextToSpeech", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		var request textToSpeechRequest
		if err := c.ShouldBindJSON(&request); err != nil || request.Text == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No text provided"})
			return
		}

		audio, err := speechService.TextToSpeech(ctx, request.Text)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Data(http.StatusOK, "audio/mpeg", audio)
	}
}
