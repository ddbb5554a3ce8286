package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"nltrack/internal/structures"
)

const (
	defaultDedupWindowSeconds = 10
	defaultLookbackDays       = 1
	defaultMinSessionSeconds  = 5
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("tracking.tokenLifetimeDays", 30)
	v.SetDefault("tracking.dedupWindowSeconds", defaultDedupWindowSeconds)
	v.SetDefault("aggregation.lookbackDays", defaultLookbackDays)
	v.SetDefault("aggregation.timezone", "UTC")
	v.SetDefault("aggregation.minSessionSeconds", defaultMinSessionSeconds)
	v.SetDefault("aggregation.viewEvents", []string{"page_view", "open"})

	_ = v.BindEnv("tracking.signingSecret", "NLT_SIGNING_SECRET")
	_ = v.BindEnv("tracking.tokenLifetimeDays", "NLT_TOKEN_LIFETIME_DAYS")
	_ = v.BindEnv("tracking.dedupWindowSeconds", "NLT_DEDUP_WINDOW")
	_ = v.BindEnv("database.driver", "NLT_DB_DRIVER")
	_ = v.BindEnv("database.dsn", "NLT_DB_DSN")
	_ = v.BindEnv("logger.level", "NLT_LOG_LEVEL")
	_ = v.BindEnv("aggregation.interval", "NLT_AGGREGATION_INTERVAL")
	_ = v.BindEnv("cache.enabled", "NLT_CACHE_ENABLED")
	_ = v.BindEnv("cache.size", "NLT_CACHE_SIZE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "NewsletterTracker"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
