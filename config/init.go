package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/vocalmail/voicestack/internal/logger"
	"github.com/vocalmail/voicestack/internal/tracing"
)

type Config struct {
	AppConfig      *AppConfig
	Logger         *logger.Config
	Tracing        *tracing.JaegerConfig
	StoreConfig    *StoreConfig
	DatabaseConfig *DatabaseConfig
	FaceConfig     *FaceConfig
	SpeechConfig   *SpeechConfig
	AuthConfig     *AuthConfig
	CronConfig     *CronConfig
	Providers      *ProviderTable
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:      &AppConfig{},
		Logger:         &logger.Config{},
		Tracing:        &tracing.JaegerConfig{},
		StoreConfig:    &StoreConfig{},
		DatabaseConfig: &DatabaseConfig{},
		FaceConfig:     &FaceConfig{},
		SpeechConfig:   &SpeechConfig{},
		AuthConfig:     &AuthConfig{},
		CronConfig:     &CronConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading voicestack config: %v", err)
	}

	config.Providers = DefaultProviderTable()

	return config, nil
}
