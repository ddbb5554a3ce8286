//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"nltrack/internal"
	"nltrack/internal/controllers"
	"nltrack/internal/providers"
	"nltrack/internal/repositories"
	"nltrack/internal/services"
	"nltrack/internal/statistic"
	"nltrack/internal/structures"
)

var storeSet = wire.NewSet(
	providers.NewDatabaseProvider,
	repositories.NewEventRepository,
	repositories.NewSnapshotRepository,
	repositories.NewArticleRepository,
	repositories.NewTokenRepository,
)

var aggregationSet = wire.NewSet(
	services.NewAggregationService,
	statistic.NewZstdCompressor,
	statistic.NewSnapshotArchive,
	statistic.NewScheduler,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		storeSet,
		aggregationSet,
		services.NewTokenService,
		services.NewTrackingService,
		controllers.NewTrackingController,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}

func InitCommands(cfg *structures.CliFlags) (*internal.Commands, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewDisabledCacheProvider,
		storeSet,
		aggregationSet,
		services.NewTokenService,
		internal.NewCommands,
	)

	return nil, nil, nil
}
