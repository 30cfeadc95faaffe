package distance

import (
	"math"

	"github.com/paulmach/orb"
)

// boundPadDegrees widens the box so float rounding never drops a boundary point.
const boundPadDegrees = 1e-9

// BoundAround returns the smallest lat/lon box containing every point within
// radiusMeters of center on the haversine sphere. Boxes touching a pole or
// the antimeridian widen to the full longitude range.
func BoundAround(center orb.Point, radiusMeters float64) orb.Bound {
	if radiusMeters < 0 {
		radiusMeters = 0
	}

	angular := radiusMeters / EarthRadiusMeters
	dLat := rad2deg(angular) + boundPadDegrees

	minLat := center.Lat() - dLat
	maxLat := center.Lat() + dLat

	minLon, maxLon := -180.0, 180.0
	if minLat > -90 && maxLat < 90 {
		ratio := math.Sin(angular) / math.Cos(deg2rad(center.Lat()))
		if ratio < 1 {
			dLon := rad2deg(math.Asin(ratio)) + boundPadDegrees
			if center.Lon()-dLon >= -180 && center.Lon()+dLon <= 180 {
				minLon = center.Lon() - dLon
				maxLon = center.Lon() + dLon
			}
		}
	}

	return orb.Bound{
		Min: orb.Point{minLon, math.Max(minLat, -90)},
		Max: orb.Point{maxLon, math.Min(maxLat, 90)},
	}
}
