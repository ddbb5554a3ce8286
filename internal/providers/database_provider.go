package providers

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"nltrack/internal/models"
	"nltrack/internal/structures"
)

func openDialector(conf *structures.DatabaseConfig) (gorm.Dialector, error) {
	switch conf.Driver {
	case "postgres":
		return postgres.Open(conf.DSN), nil
	case "sqlite":
		return sqlite.Open(conf.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
	}
}

// NewDatabaseProvider opens the shared store and migrates the tables this service owns.
// The articles table belongs to the content platform; it is migrated only so that an
// empty sqlite database is usable for local runs.
func NewDatabaseProvider(conf *structures.Config, logger Logger) (*gorm.DB, func(), error) {
	dialector, err := openDialector(&conf.Database)
	if err != nil {
		return nil, nil, err
	}

	level := gormlogger.Warn
	if conf.Debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	if err = migrateOrClose(db); err != nil {
		return nil, nil, err
	}

	logger.Infof(TypeApp, "Database connected (%s)", conf.Database.Driver)

	cleanup := func() {
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			logger.Errorf(TypeApp, "Error closing database: %s", err)
		}
	}

	return db, cleanup, nil
}

// migrateOrClose releases the connection pool when the schema cannot be brought up to date.
func migrateOrClose(db *gorm.DB) error {
	if err := Migrate(db); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Article{},
		&models.AnalyticsEvent{},
		&models.AnalyticsSnapshot{},
		&models.TrackingTokenRecord{},
	)
}
