//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"tuner/internal"
	"tuner/internal/controllers"
	"tuner/internal/library"
	"tuner/internal/providers"
	"tuner/internal/services"
	"tuner/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		library.NewZstdCompressor,
		services.NewLibraryService,
		library.NewFileManager,
		library.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
