package api

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vocalmail/voicestack/api/handlers"
	"github.com/vocalmail/voicestack/api/middleware"
	"github.com/vocalmail/voicestack/config"
	"github.com/vocalmail/voicestack/internal/logger"
	"github.com/vocalmail/voicestack/internal/metrics"
	"github.com/vocalmail/voicestack/internal/tracing"
	"github.com/vocalmail/voicestack/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(ctx context.Context, r *gin.Engine, cfg *config.Config, s *services.Services, log logger.Logger) {
	if s == nil {
		panic("Services cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))
	r.Use(middleware.RequestLoggingMiddleware(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", middleware.APIKeyHeader)
	r.Use(cors.New(corsConfig))

	metrics.InitMetrics()

	// Health and status endpoints stay open
	r.GET("/health", handlers.HealthCheck)
	r.GET("/", handlers.Status)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(metrics.MetricsMiddleware())
	if cfg.AppConfig.APIKey != "" {
		api.Use(middleware.APIKeyMiddleware(cfg.AppConfig.APIKey))
	}
	{
		// Account endpoints
		api.GET("/accounts", handlers.ListAccounts(s.AccountService))
		api.POST("/accounts", handlers.AddAccount(s.AccountService))
		api.POST("/check-account", handlers.CheckAccount(s.AccountService))

		// Face endpoints
		api.POST("/register-face", handlers.RegisterFace(s.FaceService))
		api.POST("/facial-recognition", handlers.FacialRecognition(s.FaceService, cfg.AuthConfig))
		api.POST("/login", handlers.FacialRecognition(s.FaceService, cfg.AuthConfig))
		api.GET("/users", handlers.ListUsers(s.FaceService))

		// Speech endpoints
		api.POST("/speech-to-text", handlers.SpeechToText(s.SpeechService))
		api.POST("/text-to-speech", handlers.TextToSpeech(s.SpeechService))

		// Email endpoints
		api.POST("/send-email", handlers.SendEmail(s.EmailService))
		api.POST("/read-unread-emails", handlers.ReadUnreadEmails(s.EmailService))
	}
}
