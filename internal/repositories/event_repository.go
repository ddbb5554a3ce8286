package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"nltrack/internal/models"
)

// DedupKey identifies one logical engagement for duplicate suppression. TargetURL is
// empty for opens.
type DedupKey struct {
	EventType    models.EventType
	SubjectID    string
	NewsletterID string
	TargetURL    string
}

type EventRepositoryInterface interface {
	Insert(ctx context.Context, event *models.AnalyticsEvent) error
	ExistsSince(ctx context.Context, key DedupKey, since time.Time) (bool, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.AnalyticsEvent, error)
	ListForArticles(ctx context.Context, articleIDs []string) ([]models.AnalyticsEvent, error)
}

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepositoryInterface {
	return &EventRepository{db: db}
}

func (r *EventRepository) Insert(ctx context.Context, event *models.AnalyticsEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if !event.EventType.IsValid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownEventType, event.EventType)
	}
	if event.Metadata == nil {
		event.Metadata = models.Metadata{}
	}
	event.OccurredAt = event.OccurredAt.UTC()
	event.TargetHash = models.HashTarget(event.TargetURL)

	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) ExistsSince(ctx context.Context, key DedupKey, since time.Time) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&models.AnalyticsEvent{}).
		Where("event_type = ? AND subject_id = ? AND newsletter_id = ? AND occurred_at >= ?",
			key.EventType, key.SubjectID, key.NewsletterID, since.UTC())
	if key.TargetURL != "" {
		q = q.Where("target_hash = ?", models.HashTarget(key.TargetURL))
	}

	var ids []uint
	if err := q.Limit(1).Pluck("id", &ids).Error; err != nil {
		return false, fmt.Errorf("dedup lookup: %w", err)
	}
	return len(ids) > 0, nil
}

func (r *EventRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.AnalyticsEvent, error) {
	var events []models.AnalyticsEvent
	err := r.db.WithContext(ctx).
		Where("occurred_at >= ? AND occurred_at < ?", from.UTC(), to.UTC()).
		Order("id").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) ListForArticles(ctx context.Context, articleIDs []string) ([]models.AnalyticsEvent, error) {
	if len(articleIDs) == 0 {
		return nil, nil
	}
	var events []models.AnalyticsEvent
	err := r.db.WithContext(ctx).
		Where("article_id IN ?", articleIDs).
		Order("id").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list article events: %w", err)
	}
	return events, nil
}
