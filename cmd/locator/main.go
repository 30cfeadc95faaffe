package main

import (
	"context"
	"log/slog"
	"os"

	"locator/config"
	"locator/internal/delivery"
	"locator/internal/delivery/http"
	"locator/internal/delivery/http/middleware"
	"locator/internal/delivery/http/router/handler"
	"locator/internal/domain/repository"
	"locator/internal/domain/service"
	"locator/internal/infra/cache"
	"locator/internal/infra/distance"
	logs "locator/internal/infra/log"
	"locator/internal/infra/metrics"
	"locator/internal/infra/persistence/sqlstore"
	"locator/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			verifyStore,
			purgeCacheOnStop,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		metrics.New,
		sqlstore.New,
		sqlstore.NewSchemaProvider,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			sqlstore.NewLocationRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			distance.NewStrategy,
			fx.Annotate(
				cache.New,
				fx.As(new(service.PostcodeCache)),
			),
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewLocationService,
			impl.NewSearchService,
			impl.NewHealthService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewErrorMiddleware,
			middleware.NewLoggerMiddleware,
			middleware.NewRequestIDMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewLocationHandler,
			handler.NewSearchHandler,
			handler.NewHealthHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// verifyStore logs the row count at startup. A failing store leaves the
// service running in degraded mode.
func verifyStore(lc fx.Lifecycle, repo repository.LocationRepository, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			count, err := repo.Count(ctx)
			if err != nil {
				logger.Error("Store verification failed, serving degraded", slog.Any("error", err))

				return nil
			}
			logger.Info("Store verified", slog.Int64("records", count))

			return nil
		},
	})
}

func purgeCacheOnStop(lc fx.Lifecycle, postcodes service.PostcodeCache, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			postcodes.Purge()
			logger.Info("Postcode cache cleared")

			return nil
		},
	})
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
