// Package service declares domain services implemented in the infra layer.
package service

import (
	"context"

	"github.com/paulmach/orb"
)

// Strategy names reported by DistanceStrategy.Name.
const (
	StrategyHaversine = "haversine"
	StrategyGeodesic  = "geodesic"
)

// DistanceStrategy measures the distance between two WGS84 points in meters.
// One strategy is selected at startup and shared by every request.
type DistanceStrategy interface {
	// Name identifies the strategy, StrategyHaversine or StrategyGeodesic.
	Name() string

	// Distance returns the distance in meters. It must be symmetric.
	Distance(ctx context.Context, from, to orb.Point) (float64, error)

	// Bound returns a lat/lon box containing every point this strategy
	// places within radiusMeters of center. Used as a candidate pre-filter.
	Bound(center orb.Point, radiusMeters float64) orb.Bound
}

// FallbackStrategy is implemented by strategies backed by the store. Fallback
// returns the in-process strategy that ranks candidates once the store path failed.
type FallbackStrategy interface {
	Fallback() DistanceStrategy
}

// Classify reports whether a distance lies inside a geofence of the given radius.
// The boundary is inclusive.
func Classify(distanceMeters, radiusMeters float64) bool {
	return distanceMeters <= radiusMeters
}
