package impl

import (
	"context"
	"log/slog"

	domainerrors "locator/internal/domain/errors"
	"locator/internal/domain/repository"
	"locator/internal/domain/service"
	"locator/internal/errors"
	"locator/internal/usecase"
)

type healthService struct {
	locationRepo repository.LocationRepository
	strategy     service.DistanceStrategy
	cache        service.PostcodeCache
	logger       *slog.Logger
}

// NewHealthService creates a new health service instance
func NewHealthService(
	locationRepo repository.LocationRepository,
	strategy service.DistanceStrategy,
	cache service.PostcodeCache,
	logger *slog.Logger,
) usecase.HealthUsecase {
	return &healthService{
		locationRepo: locationRepo,
		strategy:     strategy,
		cache:        cache,
		logger:       logger,
	}
}

// Check reports store reachability, the active distance strategy and cache occupancy
func (s *healthService) Check(ctx context.Context) *usecase.HealthReport {
	report := &usecase.HealthReport{
		Status:           usecase.HealthStatusHealthy,
		DistanceStrategy: s.strategy.Name(),
		Cache: usecase.CacheHealth{
			Size:     s.cache.Len(),
			Capacity: s.cache.Capacity(),
		},
	}

	if err := s.locationRepo.Ping(ctx); err != nil {
		s.degrade(ctx, report, err)

		return report
	}
	report.Database.Connected = true

	count, err := s.locationRepo.Count(ctx)
	if err != nil {
		s.degrade(ctx, report, err)

		return report
	}
	report.Database.RecordCount = &count

	return report
}

func (s *healthService) degrade(ctx context.Context, report *usecase.HealthReport, err error) {
	s.logger.WarnContext(ctx, "Health check failed", slog.Any("error", err))

	report.Status = usecase.HealthStatusDegraded
	report.Database.Error = publicMessage(err)
}

// publicMessage returns the client-safe message of err.
func publicMessage(err error) string {
	if appErr, ok := errors.AsType[domainerrors.AppError](err); ok {
		return appErr.Message()
	}

	return domainerrors.ErrStoreUnavailable.Message()
}
