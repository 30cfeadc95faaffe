package distance

import (
	"context"
	"log/slog"

	"locator/config"
	"locator/internal/domain/lifecycle"
	"locator/internal/domain/repository"
	"locator/internal/domain/service"

	"go.uber.org/fx"
)

// StrategyParams defines the dependencies of the strategy provider
type StrategyParams struct {
	fx.In

	Config *config.Config
	Repo   repository.LocationRepository
	Logger *slog.Logger
}

// NewStrategy selects the process-wide distance strategy
func NewStrategy(params StrategyParams) service.DistanceStrategy {
	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	return Select(ctx, params.Repo, params.Config.Distance, params.Logger)
}

// Select runs the capability probe once and returns the strategy every request will use.
func Select(ctx context.Context, repo repository.LocationRepository, cfg config.DistanceConfig, logger *slog.Logger) service.DistanceStrategy {
	if !cfg.Geodesic {
		logger.Info("Distance strategy selected",
			slog.String("strategy", service.StrategyHaversine),
			slog.String("reason", "geodesic disabled by config"),
		)

		return NewHaversine()
	}

	if !repo.ProbeGeodesic(ctx) {
		logger.Info("Distance strategy selected",
			slog.String("strategy", service.StrategyHaversine),
			slog.String("reason", "store has no geodesic functions"),
		)

		return NewHaversine()
	}

	logger.Info("Distance strategy selected", slog.String("strategy", service.StrategyGeodesic))

	return NewGeodesic(repo, logger)
}
