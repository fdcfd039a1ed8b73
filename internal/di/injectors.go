//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"scoreboard/internal"
	"scoreboard/internal/controllers"
	"scoreboard/internal/providers"
	"scoreboard/internal/realtime"
	"scoreboard/internal/services"
	"scoreboard/internal/storage"
	"scoreboard/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewClockProvider,

		storage.NewStore,
		storage.NewPersistence,

		realtime.NewHub,
		wire.Bind(new(services.PublisherInterface), new(*realtime.Hub)),
		wire.Bind(new(controllers.ClientCounter), new(*realtime.Hub)),

		services.NewBuzzerAlerter,
		services.NewLogoConverter,
		services.NewScoreboardService,
		services.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		controllers.NewWsController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil, nil
}
