package services

import (
	"github.com/vocalmail/voicestack/config"
	"github.com/vocalmail/voicestack/interfaces"
	"github.com/vocalmail/voicestack/internal/logger"
	"github.com/vocalmail/voicestack/internal/repository"
	"github.com/vocalmail/voicestack/services/accounts"
	"github.com/vocalmail/voicestack/services/email"
	"github.com/vocalmail/voicestack/services/events"
	"github.com/vocalmail/voicestack/services/face"
	"github.com/vocalmail/voicestack/services/face/goface"
	"github.com/vocalmail/voicestack/services/imap"
	"github.com/vocalmail/voicestack/services/smtp"
	"github.com/vocalmail/voicestack/services/speech"
	"github.com/vocalmail/voicestack/services/speech/google"
)

type Services struct {
	EventPublisher interfaces.EventPublisher
	SMTPService    interfaces.SMTPService
	IMAPService    interfaces.IMAPService
	AccountService interfaces.AccountService
	EmailService   interfaces.EmailService
	FaceService    interfaces.FaceService
	SpeechService  interfaces.SpeechService
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	var publisher interfaces.EventPublisher
	if cfg.AppConfig.RabbitMQURL != "" {
		var err error
		publisher, err = events.NewRabbitMQPublisher(cfg.AppConfig.RabbitMQURL, log)
		if err != nil {
			return nil, err
		}
	} else {
		log.Info("No RabbitMQ URL configured, domain events are disabled")
		publisher = events.NewNoopPublisher()
	}

	faceEngine, err := goface.NewEngine(cfg.FaceConfig.ModelsDir)
	if err != nil {
		return nil, err
	}

	smtpService := smtp.NewSMTPService(cfg.Providers, log)
	imapService := imap.NewIMAPService(cfg.Providers, log)
	accountService := accounts.NewAccountService(repos.AccountRepository, smtpService, publisher, log)

	services := Services{
		EventPublisher: publisher,
		SMTPService:    smtpService,
		IMAPService:    imapService,
		AccountService: accountService,
		EmailService:   email.NewEmailService(accountService, smtpService, imapService, publisher, log),
		FaceService:    face.NewFaceService(faceEngine, repos.FaceRepository, publisher, cfg.FaceConfig, cfg.AppConfig.ScratchDir, log),
		SpeechService:  speech.NewSpeechService(google.NewEngine(cfg.SpeechConfig), cfg.AppConfig.ScratchDir, log),
	}

	return &services, nil
}
