package sqlstore

import (
	"context"
	"errors"
	"testing"

	"locator/internal/domain/entity"
	domainerrors "locator/internal/domain/errors"
	"locator/internal/domain/repository"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postcodes(locations []*entity.Location) []string {
	out := make([]string, len(locations))
	for i, location := range locations {
		out[i] = location.Postcode
	}

	return out
}

func TestLocationRepository_FindByPostcode_LowestRowIDWins(t *testing.T) {
	repo, _ := newTestRepository(t, fixtureRows()...)

	location, err := repo.FindByPostcode(context.Background(), "SW1A 1AA")
	require.NoError(t, err)

	assert.Equal(t, int64(1), location.RowID)
	assert.InDelta(t, 51.501009, location.Latitude, 1e-9)
	assert.InDelta(t, -0.141588, location.Longitude, 1e-9)
	assert.Equal(t, "LONDON", location.Town)
	assert.Equal(t, "WESTMINSTER", location.District1)
	assert.Empty(t, location.Street2)
}

func TestLocationRepository_FindByPostcode_MatchesCompactSpelling(t *testing.T) {
	repo, _ := newTestRepository(t, seedRow{ID: 1, Postcode: "W1A1AA", Latitude: 51.5186, Longitude: -0.1438, Town: "LONDON"})

	location, err := repo.FindByPostcode(context.Background(), "W1A 1AA")
	require.NoError(t, err)
	assert.Equal(t, "W1A1AA", location.Postcode)
}

func TestLocationRepository_FindByPostcode_NotFound(t *testing.T) {
	repo, _ := newTestRepository(t, fixtureRows()...)

	_, err := repo.FindByPostcode(context.Background(), "ZZ9 9ZZ")
	require.ErrorIs(t, err, repository.ErrLocationNotFound)
}

func TestLocationRepository_FindByField(t *testing.T) {
	repo, _ := newTestRepository(t, fixtureRows()...)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter entity.FieldFilter
		limit  int
		want   []string
	}{
		{
			name:   "postcode prefix",
			filter: entity.FieldFilter{Field: entity.SearchFieldPostcode, Pattern: "SW1A"},
			limit:  10,
			want:   []string{"SW1A 1AA", "SW1A 2AA", "SW1A 1AA"},
		},
		{
			name:   "postcode prefix is anchored",
			filter: entity.FieldFilter{Field: entity.SearchFieldPostcode, Pattern: "1AA"},
			limit:  10,
			want:   []string{},
		},
		{
			name:   "town matches districts case-insensitively",
			filter: entity.FieldFilter{Field: entity.SearchFieldTown, Pattern: "london"},
			limit:  10,
			want:   []string{"SW1A 1AA", "SW1A 2AA", "EC1A 1BB", "SW1A 1AA", "BS1 4DJ"},
		},
		{
			name:   "town matches district2",
			filter: entity.FieldFilter{Field: entity.SearchFieldTown, Pattern: "OLD TOWN"},
			limit:  10,
			want:   []string{"EH1 1YZ"},
		},
		{
			name:   "county substring",
			filter: entity.FieldFilter{Field: entity.SearchFieldCounty, Pattern: "MANCHESTER"},
			limit:  10,
			want:   []string{"M1 1AE"},
		},
		{
			name:   "limit applies in row order",
			filter: entity.FieldFilter{Field: entity.SearchFieldTown, Pattern: "LON"},
			limit:  2,
			want:   []string{"SW1A 1AA", "SW1A 2AA"},
		},
		{
			name:   "wildcards are literal",
			filter: entity.FieldFilter{Field: entity.SearchFieldTown, Pattern: "%"},
			limit:  10,
			want:   []string{},
		},
		{
			name:   "no filter returns first rows",
			filter: entity.FieldFilter{},
			limit:  3,
			want:   []string{"SW1A 1AA", "SW1A 2AA", "EC1A 1BB"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locations, err := repo.FindByField(ctx, tt.filter, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, postcodes(locations))
		})
	}
}

func TestLocationRepository_FindByField_UnknownFieldWhenColumnsMissing(t *testing.T) {
	db, cfg := openTestDB(t)
	require.NoError(t, db.Exec(`CREATE TABLE location_data (Postcode TEXT, Latitude REAL, Longitude REAL)`).Error)
	schema, err := DiscoverSchema(context.Background(), db, cfg.Store.Table)
	require.NoError(t, err)
	repo := newLocationRepository(db, NewStaticSchemaProvider(schema), 0, testLogger())

	_, err = repo.FindByField(context.Background(), entity.FieldFilter{Field: entity.SearchFieldTown, Pattern: "LONDON"}, 10)

	var unknown *domainerrors.UnknownFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "town", unknown.Field)
	assert.Equal(t, []string{"postcode"}, unknown.Valid)
}

func collectWithinBox(t *testing.T, repo *locationRepository, filter entity.FieldFilter, bound orb.Bound) []*entity.Location {
	t.Helper()

	var locations []*entity.Location
	err := repo.ScanWithinBox(context.Background(), filter, bound, func(location *entity.Location) error {
		locations = append(locations, location)

		return nil
	})
	require.NoError(t, err)

	return locations
}

func TestLocationRepository_ScanWithinBox(t *testing.T) {
	repo, _ := newTestRepository(t, fixtureRows()...)

	bound := orb.Bound{Min: orb.Point{-0.2, 51.49}, Max: orb.Point{-0.1, 51.51}}
	assert.Equal(t, []string{"SW1A 1AA", "SW1A 2AA", "SW1A 1AA"},
		postcodes(collectWithinBox(t, repo, entity.FieldFilter{}, bound)))

	filtered := collectWithinBox(t, repo, entity.FieldFilter{Field: entity.SearchFieldPostcode, Pattern: "SW1A 2"}, bound)
	assert.Equal(t, []string{"SW1A 2AA"}, postcodes(filtered))
}

func TestLocationRepository_ScanWithinBox_VisitErrorStopsScan(t *testing.T) {
	repo, _ := newTestRepository(t, fixtureRows()...)

	stop := errors.New("stop")
	visited := 0
	bound := orb.Bound{Min: orb.Point{-0.2, 51.49}, Max: orb.Point{-0.1, 51.51}}
	err := repo.ScanWithinBox(context.Background(), entity.FieldFilter{}, bound, func(*entity.Location) error {
		visited++

		return stop
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, visited)
}

func TestLocationRepository_CoordinatePairing(t *testing.T) {
	repo, _ := newTestRepository(t,
		seedRow{ID: 1, Postcode: "AB1 1AA", Latitude: nil, Longitude: -2.1, Town: "ABERDEEN"},
		seedRow{ID: 2, Postcode: "AB1 1AB", Latitude: nil, Longitude: nil, Town: "ABERDEEN"},
		seedRow{ID: 3, Postcode: "AB1 1AC", Latitude: 57.1, Longitude: -2.1, Town: "ABERDEEN"},
	)

	locations, err := repo.FindByField(context.Background(), entity.FieldFilter{Field: entity.SearchFieldTown, Pattern: "ABERDEEN"}, 10)
	require.NoError(t, err)

	require.Equal(t, []string{"AB1 1AB", "AB1 1AC"}, postcodes(locations))
	assert.InDelta(t, 0, locations[0].Latitude, 0)
	assert.InDelta(t, 0, locations[0].Longitude, 0)
}

func TestLocationRepository_GeodesicUnavailableOnPlainSQLite(t *testing.T) {
	repo, _ := newTestRepository(t, fixtureRows()...)
	ctx := context.Background()

	assert.False(t, repo.ProbeGeodesic(ctx))

	_, err := repo.FindWithinRadius(ctx, entity.FieldFilter{}, entity.Geofence{Center: orb.Point{-0.14, 51.5}, RadiusMeters: 1000}, 10)
	require.ErrorIs(t, err, repository.ErrGeodesicUnsupported)

	_, err = repo.GeodesicDistance(ctx, orb.Point{0, 0}, orb.Point{0, 1})
	require.ErrorIs(t, err, repository.ErrGeodesicUnsupported)
}

func TestLocationRepository_CountAndPing(t *testing.T) {
	repo, db := newTestRepository(t, fixtureRows()...)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(fixtureRows())), count)
	require.NoError(t, repo.Ping(ctx))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	require.ErrorIs(t, repo.Ping(ctx), domainerrors.ErrStoreUnavailable)
	_, err = repo.Count(ctx)
	require.ErrorIs(t, err, domainerrors.ErrStoreUnavailable)
}

func TestToStoreError(t *testing.T) {
	assert.NoError(t, toStoreError(nil, "noop"))

	unavailable := toStoreError(context.DeadlineExceeded, "slow")
	assert.ErrorIs(t, unavailable, domainerrors.ErrStoreUnavailable)

	locked := toStoreError(errors.New("database is locked (5) (SQLITE_BUSY)"), "busy")
	assert.ErrorIs(t, locked, domainerrors.ErrStoreUnavailable)

	syntax := toStoreError(errors.New(`near "SELEC": syntax error`), "failed to search locations")
	var appErr domainerrors.AppError
	require.ErrorAs(t, syntax, &appErr)
	assert.Equal(t, 500, appErr.HTTPCode())
	assert.Equal(t, "failed to search locations", appErr.Details())
	assert.NotContains(t, appErr.Message(), "SELEC")
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `A\_B`, escapeLike("A_B"))
	assert.Equal(t, `C\\D`, escapeLike(`C\D`))
}
