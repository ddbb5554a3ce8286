package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Method  string
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"required|in:postgres,sqlite"`
	DSN    string `yaml:"dsn" validate:"required"`
}

type TrackingConfig struct {
	SigningSecret      string `yaml:"signingSecret" validate:"required|minLen:32"`
	TokenLifetimeDays  int    `yaml:"tokenLifetimeDays" validate:"required|min:1"`
	DedupWindowSeconds int    `yaml:"dedupWindowSeconds"`
}

type AggregationConfig struct {
	Interval          time.Duration `yaml:"interval" validate:"required|min:1"`
	LookbackDays      int           `yaml:"lookbackDays"`
	Timezone          string        `yaml:"timezone"`
	MinSessionSeconds float64       `yaml:"minSessionSeconds"`
	ViewEvents        []string      `yaml:"viewEvents"`
	ArchiveDir        string        `yaml:"archiveDir"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type CorsConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server            `yaml:"webServer"`
	Database    DatabaseConfig    `yaml:"database"`
	Tracking    TrackingConfig    `yaml:"tracking"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Logger      LoggerConfig      `yaml:"logger"`
	Cache       CacheConfig       `yaml:"cache"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Cors        CorsConfig        `yaml:"cors"`
}
