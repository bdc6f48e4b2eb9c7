package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/vocalmail/voicestack/config"
	"github.com/vocalmail/voicestack/interfaces"
	"github.com/vocalmail/voicestack/internal/auth"
	voicestack_errors "github.com/vocalmail/voicestack/internal/errors"
	"github.com/vocalmail/voicestack/internal/metrics"
	"github.com/vocalmail/voicestack/internal/tracing"
)

// Face failures are reported with status 200 and a boolean flag plus message.
// The client branches on the flag, not the status code, so the mapping is
// part of the contract.

// RegisterFace enrolls the uploaded image's face for the username.
func RegisterFace(faceService interfaces.FaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "RegisterFace", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		image, ok := readImageFile(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image file"})
			return
		}

		username := c.PostForm("username")
		if username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing username"})
			return
		}
		tracing.TagUsername(span, username)

		err := faceService.RegisterFace(ctx, username, image)
		if err != nil {
			tracing.TraceErr(span, err)
			switch {
			case errors.Is(err, voicestack_errors.ErrNoFaceDetected):
				c.JSON(http.StatusOK, gin.H{"registered": false, "message": "No face detected"})
			case errors.Is(err, voicestack_errors.ErrMultipleFacesDetected):
				c.JSON(http.StatusOK, gin.H{"registered": false, "message": "Multiple faces detected. Please provide an image with only your face."})
			case errors.Is(err, voicestack_errors.ErrEncodingFailed):
				c.JSON(http.StatusOK, gin.H{"registered": false, "message": "Failed to process face. Please try again with better lighting."})
			case errors.Is(err, voicestack_errors.ErrFaceAlreadyRegistered):
				c.JSON(http.StatusOK, gin.H{"registered": false, "message": "This face is already registered with another user."})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}

		metrics.FaceRegistrationsMetricsCount.Inc()
		c.JSON(http.StatusOK, gin.H{"registered": true, "message": "Face registered successfully"})
	}
}

// FacialRecognition authenticates the username against the uploaded image.
// On success the response carries a session token when a JWT secret is
// configured.
func FacialRecognition(faceService interfaces.FaceService, authConfig *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "FacialRecognition", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		image, ok := readImageFile(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
			return
		}

		username := c.PostForm("username")
		if username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No username provided"})
			return
		}
		tracing.TagUsername(span, username)

		err := faceService.AuthenticateFace(ctx, username, image)
		if err != nil {
			tracing.TraceErr(span, err)
			switch {
			case errors.Is(err, voicestack_errors.ErrFaceNotRegistered):
				c.JSON(http.StatusOK, gin.H{"authenticated": false, "message": "User not registered. Please register your face first."})
			case errors.Is(err, voicestack_errors.ErrNoFaceDetected):
				c.JSON(http.StatusOK, gin.H{"authenticated": false, "message": "No face detected"})
			case errors.Is(err, voicestack_errors.ErrEncodingFailed):
				c.JSON(http.StatusOK, gin.H{"authenticated": false, "message": "Failed to process face. Please try again with better lighting."})
			case errors.Is(err, voicestack_errors.ErrFaceMismatch):
				c.JSON(http.StatusOK, gin.H{"authenticated": false, "message": "Face does not match registered user"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}

		response := gin.H{
			"authenticated": true,
			"message":       "Authentication successful",
			"username":      username,
		}

		if authConfig.JWTSecret != "" {
			ttl := time.Duration(authConfig.TokenTTLMinutes) * time.Minute
			token, err := auth.GenerateToken(username, []byte(authConfig.JWTSecret), ttl)
			if err != nil {
				tracing.TraceErr(span, err)
			} else {
				response["token"] = token
			}
		}

		metrics.FaceAuthenticationsMetricsCount.Inc()
		c.JSON(http.StatusOK, response)
	}
}

// ListUsers returns every username with a registered face.
func ListUsers(faceService interfaces.FaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ListUsers", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		users, err := faceService.ListUsernames(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, users)
	}
}

func readImageFile(c *gin.Context) ([]byte, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, false
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil || len(image) == 0 {
		return nil, false
	}

	return image, true
}
