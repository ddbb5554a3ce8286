package providers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"nltrack/internal/structures"
)

type TypeEnum string

const (
	TypeApp         = "app"
	TypeGet         = "get"
	TypePost        = "post"
	TypeTracking    = "tracking"
	TypeAggregation = "aggregation"
)

var logTypes = []TypeEnum{TypeApp, TypeGet, TypePost, TypeTracking, TypeAggregation}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

// LogProvider writes one file per log type so tracking noise stays out of the app log.
type LogProvider struct {
	mu      sync.Mutex
	loggers map[TypeEnum]zerolog.Logger
	files   []*os.File
}

func GetLogTypeByRequestType(method string) TypeEnum {
	if method == "POST" {
		return TypePost
	}
	return TypeGet
}

func (l *LogProvider) get(t TypeEnum) *zerolog.Logger {
	if lg, ok := l.loggers[t]; ok {
		return &lg
	}
	lg := l.loggers[TypeApp]
	return &lg
}

func (l *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l.get(t).Error().Msgf(format, args...)
}

func (l *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l.get(t).Warn().Msgf(format, args...)
}

func (l *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l.get(t).Debug().Msgf(format, args...)
}

func (l *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l.get(t).Info().Msgf(format, args...)
}

func (l *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	l.get(t).Fatal().Msgf(format, args...)
}

func (l *LogProvider) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range l.files {
		_ = f.Close()
	}
	l.files = nil
}

// NewLogProvider opens one log file per TypeEnum; the returned cleanup closes them.
func NewLogProvider(conf *structures.Config) (Logger, func(), error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	provider := &LogProvider{
		loggers: make(map[TypeEnum]zerolog.Logger, len(logTypes)),
	}

	for _, t := range logTypes {
		path := filepath.Join(conf.Logger.Dir, string(t)+".log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, os.FileMode(conf.Logger.Mode))
		if err != nil {
			provider.Close()
			return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		provider.files = append(provider.files, file)

		var out io.Writer = file
		if conf.Debug {
			out = zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: os.Stdout})
		}

		provider.loggers[t] = zerolog.New(out).
			Level(level).
			With().
			Timestamp().
			Str("type", string(t)).
			Logger()
	}

	return provider, provider.Close, nil
}
