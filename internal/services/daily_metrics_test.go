package services

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nltrack/internal/models"
)

func rawEvent(typ models.EventType, article string, at time.Time, spent ...float64) models.AnalyticsEvent {
	e := models.AnalyticsEvent{EventType: typ, NewsletterID: "nl-1", OccurredAt: at, Metadata: models.Metadata{}}
	if article != "" {
		e.ArticleID = &article
	}
	if len(spent) > 0 {
		e.Metadata[models.MetaTimeSpentSeconds] = spent[0]
	}
	return e
}

func defaultRules() MetricRules {
	return NewMetricRules([]string{"page_view", "open"}, 5, time.UTC)
}

func TestNewMetricRules_Defaults(t *testing.T) {
	rules := NewMetricRules(nil, 0, nil)
	assert.Equal(t, time.UTC, rules.Location)
	_, ok := rules.ViewEvents[models.EventPageView]
	assert.True(t, ok)
	assert.Len(t, rules.ViewEvents, 1)
}

func TestBuildDailyRows_SparseMetrics(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	events := []models.AnalyticsEvent{
		rawEvent(models.EventPageView, "A1", at),
		rawEvent(models.EventPageView, "A1", at),
		rawEvent(models.EventClick, "A1", at),
		rawEvent(models.EventSessionEnd, "A1", at, 30),
		rawEvent(models.EventSessionEnd, "A1", at, 60),
		rawEvent(models.EventPageView, "A2", at),
	}

	rows := BuildDailyRows("2024-03-01", events, defaultRules())

	assert.Equal(t, []models.AnalyticsSnapshot{
		{SnapshotDate: "2024-03-01", ArticleID: "A1", MetricName: models.MetricTotalViews, MetricValue: 2},
		{SnapshotDate: "2024-03-01", ArticleID: "A1", MetricName: models.MetricTotalClicks, MetricValue: 1},
		{SnapshotDate: "2024-03-01", ArticleID: "A1", MetricName: models.MetricAvgTimeSpent, MetricValue: 45},
		{SnapshotDate: "2024-03-01", ArticleID: "A2", MetricName: models.MetricTotalViews, MetricValue: 1},
	}, rows)
}

func TestBuildDailyRows_SessionFloorAndRounding(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	events := []models.AnalyticsEvent{
		rawEvent(models.EventSessionEnd, "A1", at, 2),   // below the floor
		rawEvent(models.EventSessionEnd, "A1", at, 10),
		rawEvent(models.EventSessionEnd, "A1", at, 11),
		rawEvent(models.EventSessionEnd, "A1", at),      // no duration
		rawEvent(models.EventSessionEnd, "A2", at, 4.9), // only short sessions
	}

	rows := BuildDailyRows("2024-03-01", events, defaultRules())

	require.Len(t, rows, 1)
	assert.Equal(t, "A1", rows[0].ArticleID)
	assert.Equal(t, models.MetricAvgTimeSpent, rows[0].MetricName)
	assert.Equal(t, 11.0, rows[0].MetricValue, "10.5 rounds half away from zero")
}

func TestBuildDailyRows_ViewDefinition(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	events := []models.AnalyticsEvent{
		rawEvent(models.EventOpen, "A1", at),
		rawEvent(models.EventPageView, "A1", at),
		rawEvent(models.EventOpen, "", at), // newsletter-level open without an article
	}

	both := BuildDailyRows("2024-03-01", events, defaultRules())
	require.Len(t, both, 1)
	assert.Equal(t, 2.0, both[0].MetricValue)

	pageOnly := BuildDailyRows("2024-03-01", events, NewMetricRules([]string{"page_view"}, 5, time.UTC))
	require.Len(t, pageOnly, 1)
	assert.Equal(t, 1.0, pageOnly[0].MetricValue)
}

func TestBuildDailyRows_NoEvents(t *testing.T) {
	assert.Empty(t, BuildDailyRows("2024-03-01", nil, defaultRules()))
}

func TestBuildRowsByDay_UsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:00 UTC on March 2nd is still March 1st in New York
	events := []models.AnalyticsEvent{
		rawEvent(models.EventPageView, "A1", time.Date(2024, 3, 2, 2, 0, 0, 0, time.UTC)),
		rawEvent(models.EventPageView, "A1", time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)),
	}

	utcRows := BuildRowsByDay(events, NewMetricRules([]string{"page_view"}, 5, time.UTC))
	require.Len(t, utcRows, 1)
	assert.Equal(t, "2024-03-02", utcRows[0].SnapshotDate)

	nyRows := BuildRowsByDay(events, NewMetricRules([]string{"page_view"}, 5, ny))
	require.Len(t, nyRows, 2)
	assert.Equal(t, "2024-03-01", nyRows[0].SnapshotDate)
	assert.Equal(t, "2024-03-02", nyRows[1].SnapshotDate)
}

func TestFoldArticleStats(t *testing.T) {
	articles := []models.Article{
		{ID: "A1", NewsletterID: "nl-1", Title: "First"},
		{ID: "A2", NewsletterID: "nl-1", Title: "Second"},
		{ID: "A3", NewsletterID: "nl-1", Title: "Quiet"},
	}
	rows := []models.AnalyticsSnapshot{
		{SnapshotDate: "2024-03-01", ArticleID: "A1", MetricName: models.MetricTotalViews, MetricValue: 2},
		{SnapshotDate: "2024-03-01", ArticleID: "A1", MetricName: models.MetricAvgTimeSpent, MetricValue: 45},
		{SnapshotDate: "2024-03-02", ArticleID: "A1", MetricName: models.MetricTotalViews, MetricValue: 3},
		{SnapshotDate: "2024-03-02", ArticleID: "A1", MetricName: models.MetricTotalClicks, MetricValue: 1},
		{SnapshotDate: "2024-03-02", ArticleID: "A1", MetricName: models.MetricAvgTimeSpent, MetricValue: 20},
		{SnapshotDate: "2024-03-01", ArticleID: "A2", MetricName: models.MetricTotalViews, MetricValue: 5},
		{SnapshotDate: "2024-03-01", ArticleID: "ZZ", MetricName: models.MetricTotalViews, MetricValue: 99},
	}

	stats := FoldArticleStats(rows, articles)

	assert.Equal(t, []models.ArticleStats{
		{ArticleID: "A1", Title: "First", TotalViews: 5, TotalClicks: 1, AvgTimeSpent: 33},
		{ArticleID: "A2", Title: "Second", TotalViews: 5},
	}, stats)
}
