package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocalmail/voicestack/config"
	voicestack_errors "github.com/vocalmail/voicestack/internal/errors"
	"github.com/vocalmail/voicestack/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAccountService scripts responses per test.
type fakeAccountService struct {
	listings []models.AccountListing
	exists   bool
	addErr   error
}

func (f *fakeAccountService) ListAccounts(ctx context.Context, username string) ([]models.AccountListing, error) {
	return f.listings, nil
}

func (f *fakeAccountService) AddAccount(ctx context.Context, username, email, password string) error {
	return f.addErr
}

func (f *fakeAccountService) AccountExists(ctx context.Context, username, email string) (bool, error) {
	return f.exists, nil
}

func (f *fakeAccountService) GetCredential(ctx context.Context, username, email string) (*models.AccountRecord, error) {
	return nil, voicestack_errors.ErrUserNotFound
}

type fakeFaceService struct {
	registerErr error
	authErr     error
	usernames   []string
}

func (f *fakeFaceService) RegisterFace(ctx context.Context, username string, image []byte) error {
	return f.registerErr
}

func (f *fakeFaceService) AuthenticateFace(ctx context.Context, username string, image []byte) error {
	return f.authErr
}

func (f *fakeFaceService) ListUsernames(ctx context.Context) ([]string, error) {
	return f.usernames, nil
}

type fakeEmailService struct {
	sendErr   error
	fetchErr  error
	summaries []models.EmailSummary
}

func (f *fakeEmailService) Send(ctx context.Context, username, fromEmail, toEmail, subject, body string) error {
	return f.sendErr
}

func (f *fakeEmailService) FetchUnread(ctx context.Context, username, email string) ([]models.EmailSummary, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.summaries, nil
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(raw)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func multipartImage(t *testing.T, username string) (*bytes.Buffer, string) {
	t.Helper()
	buffer := &bytes.Buffer{}
	writer := multipart.NewWriter(buffer)

	part, err := writer.CreateFormFile("image", "face.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-image-bytes"))
	require.NoError(t, err)

	if username != "" {
		require.NoError(t, writer.WriteField("username", username))
	}
	require.NoError(t, writer.Close())

	return buffer, writer.FormDataContentType()
}

func TestListAccountsMissingUsername(t *testing.T) {
	router := gin.New()
	router.GET("/api/accounts", ListAccounts(&fakeAccountService{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing username parameter", decodeBody(t, w)["error"])
}

func TestListAccountsReturnsAccounts(t *testing.T) {
	svc := &fakeAccountService{listings: []models.AccountListing{
		{Email: "a@gmail.com", IsDefault: true},
	}}
	router := gin.New()
	router.GET("/api/accounts", ListAccounts(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/accounts?username=alice", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	accounts := body["accounts"].([]any)
	require.Len(t, accounts, 1)
	first := accounts[0].(map[string]any)
	assert.Equal(t, "a@gmail.com", first["email"])
	assert.Equal(t, true, first["isDefault"])
}

func TestAddAccountStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		addErr     error
		wantStatus int
	}{
		{"success", nil, http.StatusCreated},
		{"duplicate", voicestack_errors.ErrDuplicateAccount, http.StatusBadRequest},
		{"bad credentials", voicestack_errors.ErrAuthenticationFailed, http.StatusUnauthorized},
		{"persistence failure", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/api/accounts", AddAccount(&fakeAccountService{addErr: tt.addErr}))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/accounts", jsonBody(t, map[string]string{
				"email":    "a@gmail.com",
				"password": "pw",
				"username": "alice",
			}))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAddAccountMissingFields(t *testing.T) {
	router := gin.New()
	router.POST("/api/accounts", AddAccount(&fakeAccountService{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/accounts", jsonBody(t, map[string]string{
		"email": "a@gmail.com",
	}))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckAccount(t *testing.T) {
	router := gin.New()
	router.POST("/api/check-account", CheckAccount(&fakeAccountService{exists: true}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/check-account", jsonBody(t, map[string]string{
		"email":    "a@gmail.com",
		"username": "alice",
	}))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["exists"])
}

func TestRegisterFaceFailureIsStatus200(t *testing.T) {
	tests := []struct {
		name        string
		registerErr error
		wantMessage string
	}{
		{"no face", voicestack_errors.ErrNoFaceDetected, "No face detected"},
		{"multiple faces", voicestack_errors.ErrMultipleFacesDetected, "Multiple faces detected. Please provide an image with only your face."},
		{"encoding failed", voicestack_errors.ErrEncodingFailed, "Failed to process face. Please try again with better lighting."},
		{"face taken", voicestack_errors.ErrFaceAlreadyRegistered, "This face is already registered with another user."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/api/register-face", RegisterFace(&fakeFaceService{registerErr: tt.registerErr}))

			buffer, contentType := multipartImage(t, "alice")
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/register-face", buffer)
			req.Header.Set("Content-Type", contentType)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, false, body["registered"])
			assert.Equal(t, tt.wantMessage, body["message"])
		})
	}
}

func TestRegisterFaceSuccess(t *testing.T) {
	router := gin.New()
	router.POST("/api/register-face", RegisterFace(&fakeFaceService{}))

	buffer, contentType := multipartImage(t, "alice")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/register-face", buffer)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["registered"])
	assert.Equal(t, "Face registered successfully", body["message"])
}

func TestRegisterFaceMissingUsername(t *testing.T) {
	router := gin.New()
	router.POST("/api/register-face", RegisterFace(&fakeFaceService{}))

	buffer, contentType := multipartImage(t, "")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/register-face", buffer)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFacialRecognitionNotRegistered(t *testing.T) {
	authConfig := &config.AuthConfig{}
	router := gin.New()
	router.POST("/api/login", FacialRecognition(&fakeFaceService{authErr: voicestack_errors.ErrFaceNotRegistered}, authConfig))

	buffer, contentType := multipartImage(t, "nobody")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", buffer)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["authenticated"])
	assert.Equal(t, "User not registered. Please register your face first.", body["message"])
}

func TestFacialRecognitionSuccessWithToken(t *testing.T) {
	authConfig := &config.AuthConfig{JWTSecret: "test-secret", TokenTTLMinutes: 60}
	router := gin.New()
	router.POST("/api/facial-recognition", FacialRecognition(&fakeFaceService{}, authConfig))

	buffer, contentType := multipartImage(t, "alice")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/facial-recognition", buffer)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "alice", body["username"])
	assert.NotEmpty(t, body["token"])
}

func TestListUsers(t *testing.T) {
	router := gin.New()
	router.GET("/api/users", ListUsers(&fakeFaceService{usernames: []string{"alice", "bob"}}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var users []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Equal(t, []string{"alice", "bob"}, users)
}

func TestSendEmailStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		sendErr    error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"unknown user", voicestack_errors.ErrUserNotFound, http.StatusNotFound},
		{"unknown account", voicestack_errors.ErrAccountNotFound, http.StatusNotFound},
		{"transport failure", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/api/send-email", SendEmail(&fakeEmailService{sendErr: tt.sendErr}))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/send-email", jsonBody(t, map[string]string{
				"from_email": "a@gmail.com",
				"to_email":   "b@gmail.com",
				"subject":    "hi",
				"body":       "hello",
				"username":   "alice",
			}))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestSendEmailMissingFields(t *testing.T) {
	router := gin.New()
	router.POST("/api/send-email", SendEmail(&fakeEmailService{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/send-email", jsonBody(t, map[string]string{
		"from_email": "a@gmail.com",
	}))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.Contains(decodeBody(t, w)["error"].(string), "Missing required email information"))
}

type fakeSpeechService struct {
	text     string
	audio    []byte
	textErr  error
	audioErr error
}

func (f *fakeSpeechService) SpeechToText(ctx context.Context, audio []byte) (string, error) {
	if f.textErr != nil {
		return "", f.textErr
	}
	return f.text, nil
}

func (f *fakeSpeechService) TextToSpeech(ctx context.Context, text string) ([]byte, error) {
	if f.audioErr != nil {
		return nil, f.audioErr
	}
	return f.audio, nil
}

func TestSpeechToText(t *testing.T) {
	router := gin.New()
	router.POST("/api/speech-to-text", SpeechToText(&fakeSpeechService{text: "read my emails"}))

	buffer := &bytes.Buffer{}
	writer := multipart.NewWriter(buffer)
	part, err := writer.CreateFormFile("audio", "speech.wav")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-audio"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/speech-to-text", buffer)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "read my emails", decodeBody(t, w)["text"])
}

func TestSpeechToTextMissingAudio(t *testing.T) {
	router := gin.New()
	router.POST("/api/speech-to-text", SpeechToText(&fakeSpeechService{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/speech-to-text", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No audio file provided", decodeBody(t, w)["error"])
}

func TestTextToSpeech(t *testing.T) {
	router := gin.New()
	router.POST("/api/text-to-speech", TextToSpeech(&fakeSpeechService{audio: []byte("mpeg-bytes")}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/text-to-speech", jsonBody(t, map[string]string{
		"text": "you have two new emails",
	}))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte("mpeg-bytes"), w.Body.Bytes())
}

func TestTextToSpeechMissingText(t *testing.T) {
	router := gin.New()
	router.POST("/api/text-to-speech", TextToSpeech(&fakeSpeechService{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/text-to-speech", jsonBody(t, map[string]string{}))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No text provided", decodeBody(t, w)["error"])
}

func TestReadUnreadEmails(t *testing.T) {
	svc := &fakeEmailService{summaries: []models.EmailSummary{
		{From: "carol@example.com", Subject: "hi", Body: "hello there"},
	}}
	router := gin.New()
	router.POST("/api/read-unread-emails", ReadUnreadEmails(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/read-unread-emails", jsonBody(t, map[string]string{
		"email":    "a@gmail.com",
		"username": "alice",
	}))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	emails := body["emails"].([]any)
	require.Len(t, emails, 1)
	first := emails[0].(map[string]any)
	assert.Equal(t, "carol@example.com", first["from"])
}
