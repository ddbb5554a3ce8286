package services

import (
	"math"
	"sort"
	"time"

	"nltrack/internal/models"
)

// MetricRules is the configured definition of each derived metric.
type MetricRules struct {
	ViewEvents        map[models.EventType]struct{}
	MinSessionSeconds float64
	Location          *time.Location
}

func NewMetricRules(viewEvents []string, minSessionSeconds float64, loc *time.Location) MetricRules {
	rules := MetricRules{
		ViewEvents:        make(map[models.EventType]struct{}, len(viewEvents)),
		MinSessionSeconds: minSessionSeconds,
		Location:          loc,
	}
	for _, e := range viewEvents {
		rules.ViewEvents[models.EventType(e)] = struct{}{}
	}
	if len(rules.ViewEvents) == 0 {
		rules.ViewEvents[models.EventPageView] = struct{}{}
	}
	if rules.Location == nil {
		rules.Location = time.UTC
	}
	return rules
}

type articleTally struct {
	views       int64
	clicks      int64
	sessionSum  float64
	sessionSeen int64
}

// BuildDailyRows computes the sparse snapshot rows for the events of one day. Events
// without an article are ignored.
func BuildDailyRows(date string, events []models.AnalyticsEvent, rules MetricRules) []models.AnalyticsSnapshot {
	tallies := make(map[string]*articleTally)

	for i := range events {
		e := &events[i]
		if e.ArticleID == nil || *e.ArticleID == "" {
			continue
		}
		t, ok := tallies[*e.ArticleID]
		if !ok {
			t = &articleTally{}
			tallies[*e.ArticleID] = t
		}

		if _, isView := rules.ViewEvents[e.EventType]; isView {
			t.views++
		}
		switch e.EventType {
		case models.EventClick:
			t.clicks++
		case models.EventSessionEnd:
			spent, ok := e.Metadata.Float(models.MetaTimeSpentSeconds)
			if !ok || spent < rules.MinSessionSeconds {
				continue
			}
			t.sessionSum += spent
			t.sessionSeen++
		}
	}

	ids := make([]string, 0, len(tallies))
	for id := range tallies {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]models.AnalyticsSnapshot, 0, len(ids)*3)
	for _, id := range ids {
		t := tallies[id]
		if t.views > 0 {
			rows = append(rows, snapshotRow(date, id, models.MetricTotalViews, float64(t.views)))
		}
		if t.clicks > 0 {
			rows = append(rows, snapshotRow(date, id, models.MetricTotalClicks, float64(t.clicks)))
		}
		if t.sessionSeen > 0 {
			rows = append(rows, snapshotRow(date, id, models.MetricAvgTimeSpent, math.Round(t.sessionSum/float64(t.sessionSeen))))
		}
	}
	return rows
}

func snapshotRow(date, articleID, metric string, value float64) models.AnalyticsSnapshot {
	return models.AnalyticsSnapshot{
		SnapshotDate: date,
		ArticleID:    articleID,
		MetricName:   metric,
		MetricValue:  value,
	}
}

// BuildRowsByDay splits events into days in the rules' location and builds each day's rows.
func BuildRowsByDay(events []models.AnalyticsEvent, rules MetricRules) []models.AnalyticsSnapshot {
	byDay := make(map[string][]models.AnalyticsEvent)
	for _, e := range events {
		day := models.SnapshotDate(e.OccurredAt.In(rules.Location))
		byDay[day] = append(byDay[day], e)
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	var rows []models.AnalyticsSnapshot
	for _, d := range days {
		rows = append(rows, BuildDailyRows(d, byDay[d], rules)...)
	}
	return rows
}

type statsFold struct {
	stats    models.ArticleStats
	avgSum   float64
	avgCount int64
}

// FoldArticleStats collapses daily rows into one ArticleStats per article. Views and clicks
// add up; the average time is the rounded mean of the daily averages. Both read paths go
// through this function.
func FoldArticleStats(rows []models.AnalyticsSnapshot, articles []models.Article) []models.ArticleStats {
	titles := make(map[string]string, len(articles))
	for _, a := range articles {
		titles[a.ID] = a.Title
	}

	folds := make(map[string]*statsFold)
	for _, r := range rows {
		title, known := titles[r.ArticleID]
		if !known {
			continue
		}
		f, ok := folds[r.ArticleID]
		if !ok {
			f = &statsFold{stats: models.ArticleStats{ArticleID: r.ArticleID, Title: title}}
			folds[r.ArticleID] = f
		}
		switch r.MetricName {
		case models.MetricTotalViews:
			f.stats.TotalViews += int64(r.MetricValue)
		case models.MetricTotalClicks:
			f.stats.TotalClicks += int64(r.MetricValue)
		case models.MetricAvgTimeSpent:
			f.avgSum += r.MetricValue
			f.avgCount++
		}
	}

	out := make([]models.ArticleStats, 0, len(folds))
	for _, f := range folds {
		if f.avgCount > 0 {
			f.stats.AvgTimeSpent = int64(math.Round(f.avgSum / float64(f.avgCount)))
		}
		out = append(out, f.stats)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalViews != out[j].TotalViews {
			return out[i].TotalViews > out[j].TotalViews
		}
		return out[i].ArticleID < out[j].ArticleID
	})
	return out
}
