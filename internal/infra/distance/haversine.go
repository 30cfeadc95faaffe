// Package distance implements the distance strategies used by the query planner.
package distance

import (
	"context"
	"math"

	"locator/internal/domain/service"

	"github.com/paulmach/orb"
)

// EarthRadiusMeters is the mean earth radius shared by every in-process calculation.
const EarthRadiusMeters = 6371000.0

// Haversine is the great-circle strategy on a sphere of EarthRadiusMeters.
type Haversine struct{}

var _ service.DistanceStrategy = Haversine{}

// NewHaversine creates the haversine strategy
func NewHaversine() Haversine {
	return Haversine{}
}

// Name implements service.DistanceStrategy
func (Haversine) Name() string {
	return service.StrategyHaversine
}

// Distance implements service.DistanceStrategy. It never fails.
func (Haversine) Distance(_ context.Context, from, to orb.Point) (float64, error) {
	return HaversineMeters(from, to), nil
}

// Bound implements service.DistanceStrategy
func (Haversine) Bound(center orb.Point, radiusMeters float64) orb.Bound {
	return BoundAround(center, radiusMeters)
}

// HaversineMeters returns the great-circle distance between two lon/lat points.
func HaversineMeters(from, to orb.Point) float64 {
	lat1 := deg2rad(from.Lat())
	lat2 := deg2rad(to.Lat())
	dLat := lat2 - lat1
	dLon := deg2rad(to.Lon() - from.Lon())

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	// Rounding can push a past 1 for antipodal points.
	a = math.Min(1, math.Max(0, a))

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(a))
}

func deg2rad(d float64) float64 {
	return d * math.Pi / 180
}

func rad2deg(r float64) float64 {
	return r * 180 / math.Pi
}
