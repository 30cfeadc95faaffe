package distance

import (
	"context"
	"log/slog"

	"locator/internal/domain/repository"
	"locator/internal/domain/service"

	"github.com/paulmach/orb"
)

// ellipsoidMargin widens the spherical box to cover ellipsoidal distances,
// which differ from the haversine sphere by well under one percent.
const ellipsoidMargin = 1.01

// Geodesic measures distances with the store's spatial engine.
type Geodesic struct {
	repo     repository.LocationRepository
	fallback Haversine
	logger   *slog.Logger
}

var (
	_ service.DistanceStrategy = (*Geodesic)(nil)
	_ service.FallbackStrategy = (*Geodesic)(nil)
)

// NewGeodesic creates a geodesic strategy backed by repo
func NewGeodesic(repo repository.LocationRepository, logger *slog.Logger) *Geodesic {
	return &Geodesic{
		repo:   repo,
		logger: logger,
	}
}

// Name implements service.DistanceStrategy
func (g *Geodesic) Name() string {
	return service.StrategyGeodesic
}

// Bound implements service.DistanceStrategy
func (g *Geodesic) Bound(center orb.Point, radiusMeters float64) orb.Bound {
	return BoundAround(center, radiusMeters*ellipsoidMargin)
}

// Fallback implements service.FallbackStrategy
func (g *Geodesic) Fallback() service.DistanceStrategy {
	return g.fallback
}

// Distance implements service.DistanceStrategy.
// Store failures degrade to the haversine result instead of failing the request.
func (g *Geodesic) Distance(ctx context.Context, from, to orb.Point) (float64, error) {
	meters, err := g.repo.GeodesicDistance(ctx, from, to)
	if err != nil {
		g.logger.WarnContext(ctx, "Geodesic distance failed, using haversine",
			slog.Any("error", err),
		)

		return g.fallback.Distance(ctx, from, to)
	}

	return meters, nil
}
