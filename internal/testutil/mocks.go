package testutil

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"nltrack/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Messages returns the formatted messages logged at the given level.
func (m *MockLogger) Messages(level string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.Logs {
		if e.Level == level {
			out = append(out, fmt.Sprintf(e.Format, e.Args...))
		}
	}
	return out
}

// Contains reports whether any message at the given level contains substr.
func (m *MockLogger) Contains(level, substr string) bool {
	for _, msg := range m.Messages(level) {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu             sync.Mutex
	Recorded       map[string]int
	Deduplicated   map[string]int
	Rejected       map[string]int
	SnapshotRuns   int
	SnapshotRows   map[string]int
	CacheHits      int
	CacheMisses    int
	RequestsByPath map[string]int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Recorded:       make(map[string]int),
		Deduplicated:   make(map[string]int),
		Rejected:       make(map[string]int),
		SnapshotRows:   make(map[string]int),
		RequestsByPath: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestsByPath[endpoint]++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) IncEventsRecorded(eventType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Recorded[eventType]++
}
func (m *MockMetrics) IncEventsDeduplicated(eventType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deduplicated[eventType]++
}
func (m *MockMetrics) IncTokenRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rejected[reason]++
}
func (m *MockMetrics) ObserveSnapshotDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SnapshotRuns++
}
func (m *MockMetrics) SetSnapshotRows(date string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SnapshotRows[date] = count
}

// MockCompressor passes data through unchanged.
type MockCompressor struct {
	CompressErr   error
	DecompressErr error
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressErr != nil {
		return nil, m.CompressErr
	}
	return val, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressErr != nil {
		return nil, m.DecompressErr
	}
	return val, nil
}

func (m *MockCompressor) Close() {}
