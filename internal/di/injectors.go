//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"fitsyncd/internal"
	"fitsyncd/internal/controllers"
	"fitsyncd/internal/notify"
	"fitsyncd/internal/providers"
	"fitsyncd/internal/services"
	"fitsyncd/internal/storage"
	"fitsyncd/internal/structures"
	"fitsyncd/internal/syncer"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewCacheProvider,
		providers.NewClock,
		providers.NewLocalNotifier,
		providers.NewConnectivityMonitor,

		storage.NewZstdCompressor,
		storage.NewLocalCache,
		storage.NewRemoteStore,
		storage.NewRemoteProbe,

		syncer.NewSyncQueue,
		syncer.NewCoordinator,

		notify.NewScheduler,

		services.NewSessionService,
		services.NewScheduleService,
		services.NewWorkoutService,
		services.NewSettingsService,
		services.NewSweepService,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
