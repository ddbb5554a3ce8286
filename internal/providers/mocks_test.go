package providers

import "time"

// local mocks to avoid import cycle with testutil

type nopLogger struct{}

func (m *nopLogger) Errorf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *nopLogger) Warnf(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *nopLogger) Debugf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *nopLogger) Infof(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *nopLogger) Fatalf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *nopLogger) Close()                                        {}

type mockMetrics struct {
	requestEndpoint string
	requestStatus   int
	requestCalls    int
	durationCalls   int
	hits            int
	misses          int
}

func (m *mockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.requestEndpoint = endpoint
	m.requestStatus = status
	m.requestCalls++
}
func (m *mockMetrics) ObserveRequestDuration(_ string, _ time.Duration) { m.durationCalls++ }
func (m *mockMetrics) IncCacheHits()                                    { m.hits++ }
func (m *mockMetrics) IncCacheMisses()                                  { m.misses++ }
func (m *mockMetrics) IncEventsRecorded(_ string)                       {}
func (m *mockMetrics) IncEventsDeduplicated(_ string)                   {}
func (m *mockMetrics) IncTokenRejected(_ string)                        {}
func (m *mockMetrics) ObserveSnapshotDuration(_ time.Duration)          {}
func (m *mockMetrics) SetSnapshotRows(_ string, _ int)                  {}
