package models

// ArticleStats is the single result shape of the stats read path, whether it was served
// from snapshots or recomputed from raw events.
type ArticleStats struct {
	ArticleID    string `json:"article_id"`
	Title        string `json:"title"`
	TotalViews   int64  `json:"total_views"`
	TotalClicks  int64  `json:"total_clicks"`
	AvgTimeSpent int64  `json:"avg_time_spent"`
}
