package response

import "locator/internal/domain/entity"

// Location is the JSON shape of one postcode row.
// WithinGeofence and Distance are null unless the request carried a geofence.
type Location struct {
	Postcode       string   `json:"postcode"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Town           string   `json:"town"`
	County         string   `json:"county"`
	Street1        string   `json:"street1"`
	Street2        string   `json:"street2"`
	District1      string   `json:"district1"`
	District2      string   `json:"district2"`
	WithinGeofence *bool    `json:"within_geofence"`
	Distance       *float64 `json:"distance"`
}

// LocationList is the JSON shape of a search result.
type LocationList struct {
	Locations         []Location `json:"locations"`
	TotalCount        int        `json:"total_count"`
	WithinRadiusCount int        `json:"within_radius_count"`
}

// NewLocation renders a bare location.
func NewLocation(location *entity.Location) Location {
	return Location{
		Postcode:  location.Postcode,
		Latitude:  location.Latitude,
		Longitude: location.Longitude,
		Town:      location.Town,
		County:    location.County,
		Street1:   location.Street1,
		Street2:   location.Street2,
		District1: location.District1,
		District2: location.District2,
	}
}

// NewLocationList renders a search result.
func NewLocationList(result *entity.SearchResult) LocationList {
	locations := make([]Location, 0, len(result.Results))
	for _, r := range result.Results {
		location := NewLocation(r.Location)
		if result.Geofenced {
			within, meters := r.WithinGeofence, r.DistanceMeters
			location.WithinGeofence = &within
			location.Distance = &meters
		}
		locations = append(locations, location)
	}

	return LocationList{
		Locations:         locations,
		TotalCount:        result.TotalCount,
		WithinRadiusCount: result.WithinRadiusCount,
	}
}
