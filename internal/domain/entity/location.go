// Package entity contains the core business objects of the project.
package entity

import "github.com/paulmach/orb"

// Location is one row of the postcode table.
// Postcodes are not unique; RowID gives duplicates a stable order.
type Location struct {
	RowID     int64   // Store row identifier (surrogate id or rowid).
	Postcode  string  // Uppercase postcode, e.g. "SW1A 1AA".
	Latitude  float64 // WGS84 degrees.
	Longitude float64 // WGS84 degrees.
	Town      string
	County    string
	Street1   string
	Street2   string
	District1 string
	District2 string
}

// Point returns the location as an orb point (lon, lat order).
func (l *Location) Point() orb.Point {
	return orb.Point{l.Longitude, l.Latitude}
}

// GeofenceResult is a location annotated with its distance from a geofence center.
type GeofenceResult struct {
	*Location

	DistanceMeters float64
	WithinGeofence bool
}

// SearchResult is the outcome of a planned search.
// TotalCount counts returned rows only, never the full matching set.
type SearchResult struct {
	Results           []GeofenceResult
	Geofenced         bool
	TotalCount        int
	WithinRadiusCount int
}
