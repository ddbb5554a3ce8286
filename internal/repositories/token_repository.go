package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nltrack/internal/models"
)

type TokenRepositoryInterface interface {
	Save(ctx context.Context, record *models.TrackingTokenRecord) error
	FindByHash(ctx context.Context, hash string) (*models.TrackingTokenRecord, error)
	MarkRevoked(ctx context.Context, record *models.TrackingTokenRecord) error
	RevokeBySubject(ctx context.Context, subjectID string) (int64, error)
}

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepositoryInterface {
	return &TokenRepository{db: db}
}

// Save inserts the record; storing the same token twice keeps the first record.
func (r *TokenRepository) Save(ctx context.Context, record *models.TrackingTokenRecord) error {
	if record == nil {
		return fmt.Errorf("token record cannot be nil")
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token_hash"}}, DoNothing: true}).
		Create(record).Error
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// FindByHash returns nil without an error when no record exists.
func (r *TokenRepository) FindByHash(ctx context.Context, hash string) (*models.TrackingTokenRecord, error) {
	var record models.TrackingTokenRecord
	err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	return &record, nil
}

// MarkRevoked flags the record, creating it first when the token was never stored.
func (r *TokenRepository) MarkRevoked(ctx context.Context, record *models.TrackingTokenRecord) error {
	if record == nil {
		return fmt.Errorf("token record cannot be nil")
	}
	record.Revoked = true
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_hash"}},
			DoUpdates: clause.Assignments(map[string]any{"revoked": true}),
		}).
		Create(record).Error
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *TokenRepository) RevokeBySubject(ctx context.Context, subjectID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.TrackingTokenRecord{}).
		Where("subject_id = ? AND revoked = ?", subjectID, false).
		Update("revoked", true)
	if result.Error != nil {
		return 0, fmt.Errorf("revoke subject tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}
