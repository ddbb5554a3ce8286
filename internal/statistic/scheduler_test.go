package statistic

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nltrack/internal/models"
	"nltrack/internal/structures"
	"nltrack/internal/testutil"
)

// --- local mock for AggregationServiceInterface ---

type mockAggregation struct {
	mu      sync.Mutex
	dates   []string
	failOn  map[string]error
	rows    []models.AnalyticsSnapshot
	running chan struct{}
}

func (m *mockAggregation) GenerateDailySnapshot(_ context.Context, date time.Time) ([]models.AnalyticsSnapshot, error) {
	day := models.SnapshotDate(date)
	m.mu.Lock()
	m.dates = append(m.dates, day)
	m.mu.Unlock()
	if m.running != nil {
		select {
		case m.running <- struct{}{}:
		default:
		}
	}
	if err := m.failOn[day]; err != nil {
		return nil, err
	}
	return m.rows, nil
}

func (m *mockAggregation) GetArticleStatsWithFallback(_ context.Context, _ string) ([]models.ArticleStats, error) {
	return nil, nil
}

func (m *mockAggregation) Location() *time.Location { return time.UTC }

func (m *mockAggregation) Dates() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.dates...)
}

type countingCache struct {
	clears int
}

func (c *countingCache) Get(_ string) ([]byte, bool) { return nil, false }
func (c *countingCache) Set(_ string, _ []byte)      {}
func (c *countingCache) Clear()                      { c.clears++ }

func schedulerConfig(lookback int, interval time.Duration, archiveDir string) *structures.Config {
	return &structures.Config{
		Aggregation: structures.AggregationConfig{
			Interval:     interval,
			LookbackDays: lookback,
			ArchiveDir:   archiveDir,
		},
	}
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 4, 0, 30, 0, 0, time.UTC)
}

func TestScheduler_RunOnceCoversLookbackDays(t *testing.T) {
	agg := &mockAggregation{}
	conf := schedulerConfig(3, time.Hour, "")
	archive, _ := NewSnapshotArchive(conf, &testutil.MockCompressor{}, &testutil.MockLogger{})
	s := newScheduler(conf, &testutil.MockLogger{}, agg, archive, &countingCache{}, fixedNow)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03"}, agg.Dates())
}

func TestScheduler_RunOnceDefaultsToYesterday(t *testing.T) {
	agg := &mockAggregation{}
	conf := schedulerConfig(0, time.Hour, "")
	archive, _ := NewSnapshotArchive(conf, &testutil.MockCompressor{}, &testutil.MockLogger{})
	s := newScheduler(conf, &testutil.MockLogger{}, agg, archive, &countingCache{}, fixedNow)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, []string{"2024-03-03"}, agg.Dates())
}

func TestScheduler_FailedDateDoesNotStopOthers(t *testing.T) {
	boom := errors.New("query timeout")
	agg := &mockAggregation{failOn: map[string]error{"2024-03-02": boom}}
	logger := &testutil.MockLogger{}
	conf := schedulerConfig(3, time.Hour, "")
	archive, _ := NewSnapshotArchive(conf, &testutil.MockCompressor{}, logger)
	cache := &countingCache{}
	s := newScheduler(conf, logger, agg, archive, cache, fixedNow)

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03"}, agg.Dates())
	assert.True(t, logger.Contains("error", "Snapshot 2024-03-02 failed"))
	assert.Equal(t, 2, cache.clears, "only replaced dates invalidate cached stats")
}

func TestScheduler_GenerateAndArchiveWritesArchive(t *testing.T) {
	dir := t.TempDir()
	agg := &mockAggregation{rows: archiveRows()}
	conf := schedulerConfig(1, time.Hour, dir)
	archive, _ := NewSnapshotArchive(conf, &testutil.MockCompressor{}, &testutil.MockLogger{})
	s := newScheduler(conf, &testutil.MockLogger{}, agg, archive, &countingCache{}, fixedNow)

	require.NoError(t, s.GenerateAndArchive(context.Background(), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	rows, err := archive.Load("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, archiveRows(), rows)
}

func TestScheduler_ArchiveFailureOnlyWarns(t *testing.T) {
	logger := &testutil.MockLogger{}
	agg := &mockAggregation{rows: archiveRows()}
	conf := schedulerConfig(1, time.Hour, t.TempDir())
	archive, _ := NewSnapshotArchive(conf, &testutil.MockCompressor{CompressErr: errors.New("no space")}, logger)
	s := newScheduler(conf, logger, agg, archive, &countingCache{}, fixedNow)

	assert.NoError(t, s.GenerateAndArchive(context.Background(), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, logger.Contains("warn", "not archived"))
}

func TestScheduler_InitTicksAndStops(t *testing.T) {
	agg := &mockAggregation{running: make(chan struct{}, 1)}
	conf := schedulerConfig(1, 20*time.Millisecond, "")
	archive, _ := NewSnapshotArchive(conf, &testutil.MockCompressor{}, &testutil.MockLogger{})
	s := NewScheduler(conf, &testutil.MockLogger{}, agg, archive, &countingCache{})

	s.Init()
	select {
	case <-agg.running:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler never ran")
	}
	s.Stop()

	runs := len(agg.Dates())
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, runs, len(agg.Dates()), "no runs after Stop")
}

func TestScheduler_StopWithoutInit(t *testing.T) {
	conf := schedulerConfig(1, time.Hour, "")
	archive, _ := NewSnapshotArchive(conf, &testutil.MockCompressor{}, &testutil.MockLogger{})
	s := NewScheduler(conf, &testutil.MockLogger{}, &mockAggregation{}, archive, &countingCache{})

	assert.NotPanics(t, s.Stop)
}
