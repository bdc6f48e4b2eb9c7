package repository

import (
	"gorm.io/gorm"

	"github.com/vocalmail/voicestack/config"
	"github.com/vocalmail/voicestack/interfaces"
	"github.com/vocalmail/voicestack/internal/models"
	"github.com/vocalmail/voicestack/internal/repository/filestore"
)

type Repositories struct {
	AccountRepository interfaces.AccountRepository
	FaceRepository    interfaces.FaceRepository
}

// InitRepositories wires the store backends. With a database connection the
// stores live in Postgres; otherwise each store is a single JSON blob with
// atomic rename-on-write. The account blob is sealed at rest when an
// encryption key is configured.
func InitRepositories(cfg *config.StoreConfig, db *gorm.DB) (*Repositories, error) {
	if db != nil {
		return &Repositories{
			AccountRepository: NewAccountPostgresRepository(db),
			FaceRepository:    NewFacePostgresRepository(db),
		}, nil
	}

	accountRepo, err := NewFileAccountRepository(filestore.New(cfg.AccountsPath, cfg.EncryptionKey))
	if err != nil {
		return nil, err
	}

	faceRepo, err := NewFileFaceRepository(filestore.New(cfg.FacesPath, ""))
	if err != nil {
		return nil, err
	}

	return &Repositories{
		AccountRepository: accountRepo,
		FaceRepository:    faceRepo,
	}, nil
}

// MigrateDB creates the Postgres schema for the database-backed stores.
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.EmailAccount{},
		&models.FaceProfile{},
	)
}
