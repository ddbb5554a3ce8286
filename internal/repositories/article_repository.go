package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"nltrack/internal/models"
)

type ArticleRepositoryInterface interface {
	ListByNewsletter(ctx context.Context, newsletterID string) ([]models.Article, error)
}

type ArticleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepositoryInterface {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) ListByNewsletter(ctx context.Context, newsletterID string) ([]models.Article, error) {
	var articles []models.Article
	err := r.db.WithContext(ctx).
		Where("newsletter_id = ?", newsletterID).
		Order("id").
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}
