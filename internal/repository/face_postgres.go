package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vocalmail/voicestack/interfaces"
	voicestack_errors "github.com/vocalmail/voicestack/internal/errors"
	"github.com/vocalmail/voicestack/internal/models"
	"github.com/vocalmail/voicestack/internal/tracing"
)

type facePostgresRepository struct {
	db *gorm.DB
}

func NewFacePostgresRepository(db *gorm.DB) interfaces.FaceRepository {
	return &facePostgresRepository{db: db}
}

func (r *facePostgresRepository) GetEncoding(ctx context.Context, username string) (models.FaceEncoding, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "facePostgresRepository.GetEncoding")
	defer span.Finish()
	tracing.TagComponentRepository(span)
	tracing.TagUsername(span, username)

	var profile models.FaceProfile
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, voicestack_errors.ErrFaceNotRegistered
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return profile.GetEncoding()
}

func (r *facePostgresRepository) ListEncodings(ctx context.Context) (map[string]models.FaceEncoding, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "facePostgresRepository.ListEncodings")
	defer span.Finish()
	tracing.TagComponentRepository(span)

	var profiles []models.FaceProfile
	if err := r.db.WithContext(ctx).Find(&profiles).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	encodings := make(map[string]models.FaceEncoding, len(profiles))
	for _, profile := range profiles {
		encoding, err := profile.GetEncoding()
		if err != nil {
			tracing.TraceErr(span, err)
			continue
		}
		encodings[profile.Username] = encoding
	}
	return encodings, nil
}

func (r *facePostgresRepository) ListUsernames(ctx context.Context) ([]string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "facePostgresRepository.ListUsernames")
	defer span.Finish()
	tracing.TagComponentRepository(span)

	var usernames []string
	err := r.db.WithContext(ctx).
		Model(&models.FaceProfile{}).
		Order("username asc").
		Pluck("username", &usernames).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return usernames, nil
}

func (r *facePostgresRepository) SaveEncoding(ctx context.Context, username string, encoding models.FaceEncoding) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "facePostgresRepository.SaveEncoding")
	defer span.Finish()
	tracing.TagComponentRepository(span)
	tracing.TagUsername(span, username)

	profile := models.FaceProfile{Username: username}
	if err := profile.SetEncoding(encoding); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	// Re-registration overwrites the existing encoding.
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"encoding", "updated_at"}),
	}).Create(&profile).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}
