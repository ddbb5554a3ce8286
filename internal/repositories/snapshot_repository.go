package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"nltrack/internal/models"
)

const snapshotInsertBatch = 500

type SnapshotRepositoryInterface interface {
	ReplaceDate(ctx context.Context, date string, rows []models.AnalyticsSnapshot) error
	ListByDate(ctx context.Context, date string) ([]models.AnalyticsSnapshot, error)
	ListForArticles(ctx context.Context, articleIDs []string) ([]models.AnalyticsSnapshot, error)
}

type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepositoryInterface {
	return &SnapshotRepository{db: db}
}

// ReplaceDate deletes every row of the date and inserts rows in one transaction, so a
// failure leaves the previous set in place and a rerun yields the same set.
func (r *SnapshotRepository) ReplaceDate(ctx context.Context, date string, rows []models.AnalyticsSnapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("snapshot_date = ?", date).Delete(&models.AnalyticsSnapshot{}).Error; err != nil {
			return fmt.Errorf("delete snapshots for %s: %w", date, err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&rows, snapshotInsertBatch).Error; err != nil {
			return fmt.Errorf("insert snapshots for %s: %w", date, err)
		}
		return nil
	})
}

func (r *SnapshotRepository) ListByDate(ctx context.Context, date string) ([]models.AnalyticsSnapshot, error) {
	var rows []models.AnalyticsSnapshot
	err := r.db.WithContext(ctx).
		Where("snapshot_date = ?", date).
		Order("article_id, metric_name").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list snapshots for %s: %w", date, err)
	}
	return rows, nil
}

func (r *SnapshotRepository) ListForArticles(ctx context.Context, articleIDs []string) ([]models.AnalyticsSnapshot, error) {
	if len(articleIDs) == 0 {
		return nil, nil
	}
	var rows []models.AnalyticsSnapshot
	err := r.db.WithContext(ctx).
		Where("article_id IN ?", articleIDs).
		Order("snapshot_date, article_id, metric_name").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list article snapshots: %w", err)
	}
	return rows, nil
}
