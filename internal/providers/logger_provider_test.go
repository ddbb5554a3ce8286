package providers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nltrack/internal/structures"
)

func loggerConfig(dir, level string) *structures.Config {
	return &structures.Config{
		Logger: structures.LoggerConfig{
			Level: level,
			Mode:  0644,
			Dir:   dir,
		},
	}
}

func TestGetLogTypeByRequestType(t *testing.T) {
	assert.Equal(t, TypeEnum(TypePost), GetLogTypeByRequestType("POST"))
	assert.Equal(t, TypeEnum(TypeGet), GetLogTypeByRequestType("GET"))
	assert.Equal(t, TypeEnum(TypeGet), GetLogTypeByRequestType("PUT"))
}

func TestNewLogProvider_WritesOneFilePerType(t *testing.T) {
	dir := t.TempDir()

	logger, cleanup, err := NewLogProvider(loggerConfig(dir, "info"))
	require.NoError(t, err)

	logger.Infof(TypeTracking, "open recorded for %s", "nl-1")
	logger.Warnf(TypeAggregation, "snapshot %s slow", "2024-03-01")
	logger.Debugf(TypeApp, "hidden below info")
	cleanup()

	tracking, err := os.ReadFile(filepath.Join(dir, "tracking.log"))
	require.NoError(t, err)
	assert.Contains(t, string(tracking), "open recorded for nl-1")
	assert.Contains(t, string(tracking), `"type":"tracking"`)

	aggregation, err := os.ReadFile(filepath.Join(dir, "aggregation.log"))
	require.NoError(t, err)
	assert.Contains(t, string(aggregation), "snapshot 2024-03-01 slow")
	assert.NotContains(t, string(tracking), "snapshot")

	app, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(app), "hidden below info")
}

func TestNewLogProvider_UnknownTypeFallsBackToApp(t *testing.T) {
	dir := t.TempDir()

	logger, cleanup, err := NewLogProvider(loggerConfig(dir, "debug"))
	require.NoError(t, err)
	logger.Errorf(TypeEnum("other"), "routed to app")
	cleanup()

	app, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(app), "routed to app")
}

func TestNewLogProvider_InvalidLevel(t *testing.T) {
	_, _, err := NewLogProvider(loggerConfig(t.TempDir(), "verbose"))
	assert.Error(t, err)
}

func TestNewLogProvider_InvalidDir(t *testing.T) {
	_, _, err := NewLogProvider(loggerConfig("/nonexistent/directory/path", "info"))
	assert.Error(t, err)
}
