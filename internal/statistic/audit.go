package statistic

import (
	"sort"

	"nltrack/internal/models"
)

// SnapshotChange is a metric present in both the archive and the store with different values.
type SnapshotChange struct {
	ArticleID  string
	MetricName string
	Archived   float64
	Stored     float64
}

// SnapshotAudit compares the archived copy of a day with the rows currently in the store.
type SnapshotAudit struct {
	Date       string
	Matching   int
	Missing    []models.AnalyticsSnapshot // archived, absent from the store
	Unexpected []models.AnalyticsSnapshot // stored, absent from the archive
	Changed    []SnapshotChange
}

func (a *SnapshotAudit) Clean() bool {
	return len(a.Missing) == 0 && len(a.Unexpected) == 0 && len(a.Changed) == 0
}

type metricKey struct {
	article string
	metric  string
}

// CompareSnapshots diffs two row sets of the same day by (article, metric). Results are
// ordered by article id, then metric name.
func CompareSnapshots(date string, archived, stored []models.AnalyticsSnapshot) *SnapshotAudit {
	audit := &SnapshotAudit{Date: date}

	inStore := make(map[metricKey]models.AnalyticsSnapshot, len(stored))
	for _, row := range stored {
		inStore[metricKey{row.ArticleID, row.MetricName}] = row
	}

	for _, row := range archived {
		key := metricKey{row.ArticleID, row.MetricName}
		current, ok := inStore[key]
		if !ok {
			audit.Missing = append(audit.Missing, row)
			continue
		}
		delete(inStore, key)
		if current.MetricValue != row.MetricValue {
			audit.Changed = append(audit.Changed, SnapshotChange{
				ArticleID:  row.ArticleID,
				MetricName: row.MetricName,
				Archived:   row.MetricValue,
				Stored:     current.MetricValue,
			})
			continue
		}
		audit.Matching++
	}
	for _, row := range inStore {
		audit.Unexpected = append(audit.Unexpected, row)
	}

	sortRows(audit.Missing)
	sortRows(audit.Unexpected)
	sort.Slice(audit.Changed, func(i, j int) bool {
		if audit.Changed[i].ArticleID != audit.Changed[j].ArticleID {
			return audit.Changed[i].ArticleID < audit.Changed[j].ArticleID
		}
		return audit.Changed[i].MetricName < audit.Changed[j].MetricName
	})
	return audit
}

func sortRows(rows []models.AnalyticsSnapshot) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ArticleID != rows[j].ArticleID {
			return rows[i].ArticleID < rows[j].ArticleID
		}
		return rows[i].MetricName < rows[j].MetricName
	})
}
