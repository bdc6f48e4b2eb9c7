package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/vocalmail/voicestack/internal/utils"
)

// AccountRecord holds the stored credential for one email account of one
// user. The password is kept in whatever form the repository backend
// persists it (the file backend can seal the whole blob at rest).
type AccountRecord struct {
	Password  string `json:"password"`
	IsDefault bool   `json:"isDefault"`
}

// AccountListing is the per-account view returned to clients. Credentials
// never leave the store through this shape.
type AccountListing struct {
	Email     string `json:"email"`
	IsDefault bool   `json:"isDefault"`
}

// EmailAccount is the Postgres row shape for the gorm-backed account store.
type EmailAccount struct {
	ID        string    `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Username  string    `gorm:"column:username;type:varchar(255);index:idx_email_accounts_user_email,unique;not null" json:"username"`
	Email     string    `gorm:"column:email;type:varchar(255);index:idx_email_accounts_user_email,unique;not null" json:"email"`
	Password  string    `gorm:"column:password;type:varchar(255);not null" json:"-"`
	IsDefault bool      `gorm:"column:is_default;not null;default:false" json:"isDefault"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (EmailAccount) TableName() string {
	return "email_accounts"
}

func (a *EmailAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = utils.GenerateNanoIDWithPrefix("acct", 16)
	}
	return nil
}
