//go:build wireinject
// +build wireinject

package di

import (
	"admission/internal"
	"admission/internal/checks"
	"admission/internal/controllers"
	"admission/internal/persistence"
	"admission/internal/providers"
	"admission/internal/services"
	"admission/internal/sheets"
	"admission/internal/structures"
	"admission/internal/synchronizer"

	wire "github.com/google/wire"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		sheets.NewWorkbook,
		persistence.NewZstdCompressor,
		persistence.NewFileManager,
		persistence.NewBackupMirror,
		persistence.NewBackupManager,
		checks.NewChecks,

		services.NewContentService,
		services.NewRegistry,
		services.NewTelemetryService,
		synchronizer.NewScheduler,

		controllers.NewContentController,
		controllers.NewSyncController,
		controllers.NewCheckController,
		controllers.NewUserController,
		controllers.NewAdminController,
		controllers.NewTelemetryController,
		controllers.NewBackupController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil
}
