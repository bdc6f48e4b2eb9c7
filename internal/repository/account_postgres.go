package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/vocalmail/voicestack/interfaces"
	voicestack_errors "github.com/vocalmail/voicestack/internal/errors"
	"github.com/vocalmail/voicestack/internal/models"
	"github.com/vocalmail/voicestack/internal/tracing"
)

type accountPostgresRepository struct {
	db *gorm.DB
}

func NewAccountPostgresRepository(db *gorm.DB) interfaces.AccountRepository {
	return &accountPostgresRepository{db: db}
}

func (r *accountPostgresRepository) ListAccounts(ctx context.Context, username string) ([]models.AccountListing, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "accountPostgresRepository.ListAccounts")
	defer span.Finish()
	tracing.TagComponentRepository(span)
	tracing.TagUsername(span, username)

	var accounts []models.EmailAccount
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("email asc").
		Find(&accounts).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	listings := make([]models.AccountListing, 0, len(accounts))
	for _, account := range accounts {
		listings = append(listings, models.AccountListing{
			Email:     account.Email,
			IsDefault: account.IsDefault,
		})
	}
	return listings, nil
}

func (r *accountPostgresRepository) GetAccount(ctx context.Context, username, email string) (*models.AccountRecord, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "accountPostgresRepository.GetAccount")
	defer span.Finish()
	tracing.TagComponentRepository(span)
	tracing.TagUsername(span, username)

	var userCount int64
	err := r.db.WithContext(ctx).
		Model(&models.EmailAccount{}).
		Where("username = ?", username).
		Count(&userCount).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if userCount == 0 {
		return nil, voicestack_errors.ErrUserNotFound
	}

	var account models.EmailAccount
	err = r.db.WithContext(ctx).
		Where("username = ? AND email = ?", username, email).
		First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, voicestack_errors.ErrAccountNotFound
		}
		tracing.TraceErr(span, err)
		return nil, err
	}

	return &models.AccountRecord{
		Password:  account.Password,
		IsDefault: account.IsDefault,
	}, nil
}

func (r *accountPostgresRepository) AccountExists(ctx context.Context, username, email string) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "accountPostgresRepository.AccountExists")
	defer span.Finish()
	tracing.TagComponentRepository(span)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EmailAccount{}).
		Where("username = ? AND email = ?", username, email).
		Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return false, err
	}
	return count > 0, nil
}

func (r *accountPostgresRepository) CreateAccount(ctx context.Context, username, email, password string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "accountPostgresRepository.CreateAccount")
	defer span.Finish()
	tracing.TagComponentRepository(span)
	tracing.TagUsername(span, username)
	tracing.TagEmail(span, email)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.EmailAccount{}).
			Where("username = ? AND email = ?", username, email).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return voicestack_errors.ErrDuplicateAccount
		}

		var total int64
		if err := tx.Model(&models.EmailAccount{}).
			Where("username = ?", username).
			Count(&total).Error; err != nil {
			return err
		}

		account := models.EmailAccount{
			Username:  username,
			Email:     email,
			Password:  password,
			IsDefault: total == 0,
		}
		return tx.Create(&account).Error
	})
	if err != nil && err != voicestack_errors.ErrDuplicateAccount {
		tracing.TraceErr(span, err)
	}
	return err
}
