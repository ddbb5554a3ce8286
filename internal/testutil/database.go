package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"nltrack/internal/models"
	"nltrack/internal/providers"
)

// NewTestDB returns a migrated in-memory sqlite database private to the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// each connection to ":memory:" is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, providers.Migrate(db))
	return db
}

func SeedArticles(t *testing.T, db *gorm.DB, articles ...models.Article) {
	t.Helper()
	for i := range articles {
		require.NoError(t, db.Create(&articles[i]).Error)
	}
}

// SeedEvent inserts a raw event; subject and article may be empty.
func SeedEvent(t *testing.T, db *gorm.DB, typ models.EventType, newsletterID, articleID, subjectID string, at time.Time, meta models.Metadata) {
	t.Helper()
	event := &models.AnalyticsEvent{
		EventType:    typ,
		NewsletterID: newsletterID,
		OccurredAt:   at.UTC(),
		Metadata:     meta,
	}
	if articleID != "" {
		event.ArticleID = &articleID
	}
	if subjectID != "" {
		event.SubjectID = &subjectID
	}
	if meta == nil {
		event.Metadata = models.Metadata{}
	}
	require.NoError(t, db.Create(event).Error)
}
