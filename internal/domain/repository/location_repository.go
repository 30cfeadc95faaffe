// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"locator/internal/domain/entity"
	"locator/internal/errors"

	"github.com/paulmach/orb"
)

// Domain-specific errors for location persistence.
var (
	// ErrLocationNotFound is returned when no row carries the requested postcode.
	ErrLocationNotFound = errors.New("location not found")
	// ErrGeodesicUnsupported is returned by geodesic operations on stores without a spatial engine.
	ErrGeodesicUnsupported = errors.New("geodesic functions not available")
)

// LocationVisitor receives one streamed row.
type LocationVisitor func(location *entity.Location) error

// LocationRepository is the read side of the postcode table.
type LocationRepository interface {
	// FindByPostcode returns the first row (lowest row id) for a normalized postcode.
	// Returns ErrLocationNotFound on a miss.
	FindByPostcode(ctx context.Context, postcode string) (*entity.Location, error)

	// FindByField returns up to limit rows matching the filter in store order.
	FindByField(ctx context.Context, filter entity.FieldFilter, limit int) ([]*entity.Location, error)

	// ScanWithinBox streams every row matching the filter whose coordinates lie inside
	// bound to visit, in row id order. No limit is applied: callers rank by distance
	// and keep only what they need. A visit error stops the scan and is returned as is.
	ScanWithinBox(ctx context.Context, filter entity.FieldFilter, bound orb.Bound, visit LocationVisitor) error

	// FindWithinRadius ranks rows by store-native geodesic distance, closest first.
	// Returns ErrGeodesicUnsupported when the store has no spatial engine.
	FindWithinRadius(ctx context.Context, filter entity.FieldFilter, fence entity.Geofence, limit int) ([]entity.GeofenceResult, error)

	// GeodesicDistance measures one pair with the store-native function, in meters.
	GeodesicDistance(ctx context.Context, from, to orb.Point) (float64, error)

	// ProbeGeodesic reports whether the store exposes a geodesic distance function.
	ProbeGeodesic(ctx context.Context) bool

	// Count returns the number of rows in the table.
	Count(ctx context.Context) (int64, error)

	// Ping verifies the store connection.
	Ping(ctx context.Context) error
}
