package config

type AppConfig struct {
	APIPort     string `env:"PORT" envDefault:"5001"`
	APIKey      string `env:"API_KEY"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
	ScratchDir  string `env:"SCRATCH_DIR" envDefault:""`
}

// StoreConfig drives the file-backed stores. EncryptionKey is optional; when
// set, the account store blob is sealed at rest without changing its
// external contract.
type StoreConfig struct {
	AccountsPath  string `env:"ACCOUNTS_STORE_PATH" envDefault:"email_accounts.json"`
	FacesPath     string `env:"FACES_STORE_PATH" envDefault:"face_encodings.json"`
	EncryptionKey string `env:"STORE_ENCRYPTION_KEY"`
}

// DatabaseConfig switches the stores to Postgres when Host is set.
type DatabaseConfig struct {
	Host            string `env:"VOICESTACK_POSTGRES_HOST"`
	Port            string `env:"VOICESTACK_POSTGRES_PORT" envDefault:"5432"`
	User            string `env:"VOICESTACK_POSTGRES_USER"`
	DBName          string `env:"VOICESTACK_POSTGRES_DB_NAME"`
	Password        string `env:"VOICESTACK_POSTGRES_PASSWORD"`
	MaxConn         int    `env:"VOICESTACK_POSTGRES_DB_MAX_CONN" envDefault:"10"`
	MaxIdleConn     int    `env:"VOICESTACK_POSTGRES_DB_MAX_IDLE_CONN" envDefault:"5"`
	ConnMaxLifetime int    `env:"VOICESTACK_POSTGRES_DB_CONN_MAX_LIFETIME" envDefault:"30"`
	LogLevel        string `env:"VOICESTACK_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"VOICESTACK_POSTGRES_SSL_MODE"`
}

type FaceConfig struct {
	ModelsDir string  `env:"FACE_MODELS_DIR" envDefault:"models"`
	Tolerance float64 `env:"FACE_MATCH_TOLERANCE" envDefault:"0.5"`
}

type SpeechConfig struct {
	RecognizeURL  string `env:"SPEECH_RECOGNIZE_URL" envDefault:"http://www.google.com/speech-api/v2/recognize"`
	RecognizeKey  string `env:"SPEECH_RECOGNIZE_KEY"`
	SynthesizeURL string `env:"SPEECH_SYNTHESIZE_URL" envDefault:"https://translate.google.com/translate_tts"`
	Language      string `env:"SPEECH_LANGUAGE" envDefault:"en-US"`
}

type AuthConfig struct {
	JWTSecret       string `env:"JWT_SECRET"`
	TokenTTLMinutes int    `env:"JWT_TOKEN_TTL_MINUTES" envDefault:"60"`
}

type CronConfig struct {
	ScratchSweepSchedule string `env:"CRON_SCHEDULE_SCRATCH_SWEEP" envDefault:"@every 10m"`
	ScratchMaxAgeMinutes int    `env:"SCRATCH_MAX_AGE_MINUTES" envDefault:"30"`
}
