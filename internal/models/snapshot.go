package models

import "time"

const (
	MetricTotalViews   = "total_views"
	MetricTotalClicks  = "total_clicks"
	MetricAvgTimeSpent = "avg_time_spent"
)

const SnapshotDateLayout = "2006-01-02"

// AnalyticsSnapshot is one derived metric for one article on one day. Rows exist only for
// metrics with at least one contributing event.
type AnalyticsSnapshot struct {
	SnapshotDate string  `gorm:"primaryKey;size:10" json:"snapshot_date"`
	ArticleID    string  `gorm:"primaryKey;size:64" json:"article_id"`
	MetricName   string  `gorm:"primaryKey;size:32" json:"metric_name"`
	MetricValue  float64 `gorm:"not null" json:"metric_value"`
}

func (AnalyticsSnapshot) TableName() string {
	return "analytics_snapshots"
}

func SnapshotDate(t time.Time) string {
	return t.Format(SnapshotDateLayout)
}
