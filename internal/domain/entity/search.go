package entity

import (
	"strings"

	"github.com/paulmach/orb"
)

// SearchField names the column family a search query is matched against.
type SearchField string

const (
	// SearchFieldNone applies no field filter (spatial-only search).
	SearchFieldNone SearchField = ""
	// SearchFieldPostcode matches postcodes by anchored prefix.
	SearchFieldPostcode SearchField = "postcode"
	// SearchFieldTown matches town, district1 and district2 by substring.
	SearchFieldTown SearchField = "town"
	// SearchFieldCounty matches county by substring.
	SearchFieldCounty SearchField = "county"
)

// SearchFields lists the searchable fields in a stable order.
func SearchFields() []SearchField {
	return []SearchField{SearchFieldPostcode, SearchFieldTown, SearchFieldCounty}
}

// ParseSearchField resolves a field name case-insensitively.
func ParseSearchField(name string) (SearchField, bool) {
	field := SearchField(strings.ToLower(strings.TrimSpace(name)))
	if field == SearchFieldNone {
		return SearchFieldNone, true
	}

	for _, known := range SearchFields() {
		if field == known {
			return known, true
		}
	}

	return SearchFieldNone, false
}

// String returns the string representation of the SearchField.
func (f SearchField) String() string {
	return string(f)
}

// Geofence is a circular region around Center.
type Geofence struct {
	Center       orb.Point // lon, lat
	RadiusMeters float64
}

// Lat returns the center latitude.
func (g Geofence) Lat() float64 { return g.Center.Lat() }

// Lon returns the center longitude.
func (g Geofence) Lon() float64 { return g.Center.Lon() }

// SearchCriteria is the request-scoped input of a search.
// Field is kept raw so unknown names surface as UnknownFieldError.
type SearchCriteria struct {
	Field    string
	Query    string
	Limit    int
	Geofence *Geofence
}

// FieldFilter is the normalized base filter of a query plan.
type FieldFilter struct {
	Field   SearchField
	Pattern string // uppercase
}

// IsEmpty reports whether the filter matches every row.
func (f FieldFilter) IsEmpty() bool {
	return f.Field == SearchFieldNone || f.Pattern == ""
}

// QueryPlan is a validated, executable search.
type QueryPlan struct {
	Filter   FieldFilter
	Geofence *Geofence
	Limit    int

	// Empty marks a plan that short-circuits to zero rows (radius 0).
	Empty bool
}
