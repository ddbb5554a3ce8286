package services

import (
	"context"
	"fmt"
	"time"

	"nltrack/internal/models"
	"nltrack/internal/providers"
	"nltrack/internal/repositories"
	"nltrack/internal/structures"
)

type AggregationServiceInterface interface {
	GenerateDailySnapshot(ctx context.Context, date time.Time) ([]models.AnalyticsSnapshot, error)
	GetArticleStatsWithFallback(ctx context.Context, newsletterID string) ([]models.ArticleStats, error)
	Location() *time.Location
}

type AggregationService struct {
	events    repositories.EventRepositoryInterface
	snapshots repositories.SnapshotRepositoryInterface
	articles  repositories.ArticleRepositoryInterface
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	rules     MetricRules
}

func NewAggregationService(
	conf *structures.Config,
	events repositories.EventRepositoryInterface,
	snapshots repositories.SnapshotRepositoryInterface,
	articles repositories.ArticleRepositoryInterface,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) (AggregationServiceInterface, error) {
	loc := time.UTC
	if tz := conf.Aggregation.Timezone; tz != "" {
		var err error
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("aggregation timezone %q: %w", tz, err)
		}
	}

	return &AggregationService{
		events:    events,
		snapshots: snapshots,
		articles:  articles,
		logger:    logger,
		metrics:   metrics,
		rules:     NewMetricRules(conf.Aggregation.ViewEvents, conf.Aggregation.MinSessionSeconds, loc),
	}, nil
}

func (s *AggregationService) Location() *time.Location {
	return s.rules.Location
}

// DayBounds returns [start of day, start of next day) for date in loc.
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	d := date.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// GenerateDailySnapshot replaces the whole row set of one day. Reruns produce the same set,
// and an error leaves the date's previous rows and every other date untouched.
func (s *AggregationService) GenerateDailySnapshot(ctx context.Context, date time.Time) ([]models.AnalyticsSnapshot, error) {
	started := time.Now()
	from, to := DayBounds(date, s.rules.Location)
	day := models.SnapshotDate(from)

	events, err := s.events.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", day, err)
	}

	rows := BuildDailyRows(day, events, s.rules)
	if err = s.snapshots.ReplaceDate(ctx, day, rows); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", day, err)
	}

	s.metrics.ObserveSnapshotDuration(time.Since(started))
	s.metrics.SetSnapshotRows(day, len(rows))
	s.logger.Infof(providers.TypeAggregation, "Snapshot %s: %d events compacted into %d rows", day, len(events), len(rows))

	return rows, nil
}

// GetArticleStatsWithFallback serves from snapshots and recomputes from raw events only
// when no snapshot row exists for the newsletter's articles.
func (s *AggregationService) GetArticleStatsWithFallback(ctx context.Context, newsletterID string) ([]models.ArticleStats, error) {
	articles, err := s.articles.ListByNewsletter(ctx, newsletterID)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return []models.ArticleStats{}, nil
	}

	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}

	rows, err := s.snapshots.ListForArticles(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return FoldArticleStats(rows, articles), nil
	}

	s.logger.Debugf(providers.TypeAggregation, "No snapshots for newsletter %s, computing from raw events", newsletterID)
	events, err := s.events.ListForArticles(ctx, ids)
	if err != nil {
		return nil, err
	}
	return FoldArticleStats(BuildRowsByDay(events, s.rules), articles), nil
}
