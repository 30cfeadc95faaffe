package impl

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"

	"locator/config"
	"locator/internal/domain/entity"
	domainerrors "locator/internal/domain/errors"
	"locator/internal/domain/repository"
	"locator/internal/domain/service"
	"locator/internal/errors"
	"locator/internal/infra/distance"
	mockRepo "locator/internal/mocks/repository"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var buckinghamPalace = orb.Point{-0.141588, 51.501009}

// londonRows are listed out of distance order on purpose.
func londonRows() []*entity.Location {
	return []*entity.Location{
		{RowID: 5, Postcode: "E1 6AN", Latitude: 51.5202, Longitude: -0.0742, Town: "LONDON"},
		{RowID: 3, Postcode: "SW1A 2AA", Latitude: 51.503541, Longitude: -0.127670, Town: "LONDON"},
		{RowID: 2, Postcode: "SW1A 1AA", Latitude: 51.501009, Longitude: -0.141588, Town: "LONDON"},
		{RowID: 4, Postcode: "WC2N 5DU", Latitude: 51.5079, Longitude: -0.1246, Town: "LONDON"},
		{RowID: 1, Postcode: "SW1A 1AA", Latitude: 51.501009, Longitude: -0.141588, Town: "LONDON"},
	}
}

func testSearchConfig() *config.Config {
	return &config.Config{
		Search: config.SearchConfig{
			DefaultLimit:    1000,
			MaxLimit:        5000,
			MaxRadiusMeters: 50000,
		},
	}
}

// geodesicStub reports the geodesic name while measuring on the sphere.
type geodesicStub struct {
	distance.Haversine
}

func (geodesicStub) Name() string { return service.StrategyGeodesic }

func newSearchService(t *testing.T, strategy service.DistanceStrategy) (*mockRepo.MockLocationRepository, *searchService) {
	t.Helper()

	mockLocationRepo := mockRepo.NewMockLocationRepository(t)
	svc := NewSearchService(mockLocationRepo, strategy, testSearchConfig(), discardLogger())

	return mockLocationRepo, svc.(*searchService)
}

// visitRows feeds rows to the scan visitor the way the store streams them.
func visitRows(rows []*entity.Location) func(context.Context, entity.FieldFilter, orb.Bound, repository.LocationVisitor) error {
	return func(_ context.Context, _ entity.FieldFilter, _ orb.Bound, visit repository.LocationVisitor) error {
		for _, row := range rows {
			if err := visit(row); err != nil {
				return err
			}
		}

		return nil
	}
}

func fenceAt(radius float64) *entity.Geofence {
	return &entity.Geofence{Center: buckinghamPalace, RadiusMeters: radius}
}

func TestSearchService_Plan_UnknownField(t *testing.T) {
	_, svc := newSearchService(t, distance.NewHaversine())

	_, err := svc.Plan(entity.SearchCriteria{Field: "zipcode", Query: "SW1A"})
	require.Error(t, err)

	unknown, ok := errors.AsType[*domainerrors.UnknownFieldError](err)
	require.True(t, ok)
	assert.Equal(t, "zipcode", unknown.Field)
	assert.Equal(t, []string{"postcode", "town", "county"}, unknown.Valid)
}

func TestSearchService_Plan_Defaults(t *testing.T) {
	_, svc := newSearchService(t, distance.NewHaversine())

	plan, err := svc.Plan(entity.SearchCriteria{Field: "Town", Query: " lon "})
	require.NoError(t, err)
	assert.Equal(t, 1000, plan.Limit)
	assert.Equal(t, entity.FieldFilter{Field: entity.SearchFieldTown, Pattern: "LON"}, plan.Filter)
	assert.Nil(t, plan.Geofence)
	assert.False(t, plan.Empty)
}

func TestSearchService_Plan_RejectsInvalidCriteria(t *testing.T) {
	_, svc := newSearchService(t, distance.NewHaversine())

	tests := []struct {
		name     string
		criteria entity.SearchCriteria
	}{
		{name: "limit too large", criteria: entity.SearchCriteria{Limit: 5001}},
		{name: "negative limit", criteria: entity.SearchCriteria{Limit: -1}},
		{name: "field without query", criteria: entity.SearchCriteria{Field: "county"}},
		{name: "latitude out of range", criteria: entity.SearchCriteria{Geofence: &entity.Geofence{Center: orb.Point{0, 91}, RadiusMeters: 10}}},
		{name: "longitude out of range", criteria: entity.SearchCriteria{Geofence: &entity.Geofence{Center: orb.Point{-181, 0}, RadiusMeters: 10}}},
		{name: "negative radius", criteria: entity.SearchCriteria{Geofence: fenceAt(-1)}},
		{name: "radius too large", criteria: entity.SearchCriteria{Geofence: fenceAt(50001)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Plan(tt.criteria)
			assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
		})
	}
}

func TestSearchService_ZeroRadiusNeverTouchesStore(t *testing.T) {
	// No expectations: any repository call fails the test.
	_, svc := newSearchService(t, distance.NewHaversine())

	result, err := svc.Search(context.Background(), entity.SearchCriteria{Geofence: fenceAt(0)})
	require.NoError(t, err)
	assert.Empty(t, result.Results)
	assert.NotNil(t, result.Results)
	assert.True(t, result.Geofenced)
	assert.Equal(t, 0, result.TotalCount)
	assert.Equal(t, 0, result.WithinRadiusCount)
}

func TestSearchService_TownSearchUsesStoreOrder(t *testing.T) {
	mockLocationRepo, svc := newSearchService(t, distance.NewHaversine())

	rows := londonRows()[:3]
	mockLocationRepo.EXPECT().
		FindByField(mock.Anything, entity.FieldFilter{Field: entity.SearchFieldTown, Pattern: "LON"}, 5).
		Return(rows, nil).
		Once()

	result, err := svc.Search(context.Background(), entity.SearchCriteria{Field: "town", Query: "LON", Limit: 5})
	require.NoError(t, err)
	require.Len(t, result.Results, 3)
	assert.False(t, result.Geofenced)
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, 3, result.WithinRadiusCount)
	for i, r := range result.Results {
		assert.Same(t, rows[i], r.Location)
		assert.Zero(t, r.DistanceMeters)
	}
}

func TestSearchService_GeofenceRanksAndFilters(t *testing.T) {
	mockLocationRepo, svc := newSearchService(t, distance.NewHaversine())

	mockLocationRepo.EXPECT().
		ScanWithinBox(mock.Anything, entity.FieldFilter{}, mock.AnythingOfType("orb.Bound"), mock.Anything).
		RunAndReturn(func(ctx context.Context, filter entity.FieldFilter, bound orb.Bound, visit repository.LocationVisitor) error {
			assert.True(t, bound.Contains(buckinghamPalace))

			return visitRows(londonRows())(ctx, filter, bound, visit)
		}).
		Once()

	result, err := svc.Search(context.Background(), entity.SearchCriteria{Geofence: fenceAt(1200)})
	require.NoError(t, err)

	require.Len(t, result.Results, 3)
	assert.Equal(t, int64(1), result.Results[0].RowID)
	assert.Equal(t, int64(2), result.Results[1].RowID)
	assert.Equal(t, "SW1A 2AA", result.Results[2].Postcode)
	assert.InDelta(t, 0, result.Results[0].DistanceMeters, 1e-6)
	assert.InDelta(t, 1006, result.Results[2].DistanceMeters, 20)
	assert.True(t, result.Geofenced)
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, 3, result.WithinRadiusCount)
}

func TestSearchService_GeofenceAppliesLimitAfterRanking(t *testing.T) {
	mockLocationRepo, svc := newSearchService(t, distance.NewHaversine())

	filter := entity.FieldFilter{Field: entity.SearchFieldPostcode, Pattern: "SW1A"}
	mockLocationRepo.EXPECT().
		ScanWithinBox(mock.Anything, filter, mock.Anything, mock.Anything).
		RunAndReturn(visitRows(londonRows())).
		Once()

	result, err := svc.Search(context.Background(), entity.SearchCriteria{
		Field:    "postcode",
		Query:    "sw1a",
		Limit:    2,
		Geofence: fenceAt(10000),
	})
	require.NoError(t, err)

	require.Len(t, result.Results, 2)
	assert.Equal(t, []int64{1, 2}, []int64{result.Results[0].RowID, result.Results[1].RowID})
	assert.Equal(t, 2, result.TotalCount)
}

func TestSearchService_GeodesicPushDown(t *testing.T) {
	mockLocationRepo, svc := newSearchService(t, geodesicStub{})

	fence := fenceAt(500)
	pushed := []entity.GeofenceResult{
		{Location: londonRows()[4], DistanceMeters: 0, WithinGeofence: true},
	}
	mockLocationRepo.EXPECT().
		FindWithinRadius(mock.Anything, entity.FieldFilter{}, *fence, 10).
		Return(pushed, nil).
		Once()

	result, err := svc.Search(context.Background(), entity.SearchCriteria{Limit: 10, Geofence: fence})
	require.NoError(t, err)
	assert.Equal(t, pushed, result.Results)
	assert.Equal(t, 1, result.WithinRadiusCount)
}

func TestSearchService_GeodesicFailureFallsBackToBox(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "unsupported", err: repository.ErrGeodesicUnsupported},
		{name: "execute error", err: domainerrors.NewDatabaseExecuteError(errors.New("function st_distance does not exist"), "failed")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockLocationRepo, svc := newSearchService(t, geodesicStub{})

			mockLocationRepo.EXPECT().
				FindWithinRadius(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(nil, tt.err).
				Once()
			mockLocationRepo.EXPECT().
				ScanWithinBox(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				RunAndReturn(visitRows(londonRows())).
				Once()

			result, err := svc.Search(context.Background(), entity.SearchCriteria{Geofence: fenceAt(1200)})
			require.NoError(t, err)
			assert.Len(t, result.Results, 3)
		})
	}
}

func TestSearchService_GeodesicFailureRanksWithHaversine(t *testing.T) {
	mockLocationRepo := mockRepo.NewMockLocationRepository(t)
	geodesic := distance.NewGeodesic(mockLocationRepo, discardLogger())
	svc := NewSearchService(mockLocationRepo, geodesic, testSearchConfig(), discardLogger())

	fence := fenceAt(1200)
	mockLocationRepo.EXPECT().
		FindWithinRadius(mock.Anything, entity.FieldFilter{}, *fence, 1000).
		Return(nil, domainerrors.NewDatabaseExecuteError(errors.New("function st_distance does not exist"), "failed")).
		Once()
	mockLocationRepo.EXPECT().
		ScanWithinBox(mock.Anything, entity.FieldFilter{}, mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, filter entity.FieldFilter, bound orb.Bound, visit repository.LocationVisitor) error {
			assert.Equal(t, distance.BoundAround(fence.Center, fence.RadiusMeters), bound)

			return visitRows(londonRows())(ctx, filter, bound, visit)
		}).
		Once()

	result, err := svc.Search(context.Background(), entity.SearchCriteria{Geofence: fence})
	require.NoError(t, err)

	require.Len(t, result.Results, 3)
	for _, r := range result.Results {
		assert.InDelta(t, distance.HaversineMeters(buckinghamPalace, r.Point()), r.DistanceMeters, 0)
	}
	mockLocationRepo.AssertNotCalled(t, "GeodesicDistance", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchService_ScanErrorPropagates(t *testing.T) {
	mockLocationRepo, svc := newSearchService(t, distance.NewHaversine())

	mockLocationRepo.EXPECT().
		ScanWithinBox(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.Wrap(domainerrors.ErrStoreUnavailable, "connection reset")).
		Once()

	_, err := svc.Search(context.Background(), entity.SearchCriteria{Geofence: fenceAt(1200)})
	assert.ErrorIs(t, err, domainerrors.ErrStoreUnavailable)
}

func TestSearchService_StoreUnavailablePropagates(t *testing.T) {
	mockLocationRepo, svc := newSearchService(t, geodesicStub{})

	mockLocationRepo.EXPECT().
		FindWithinRadius(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.Wrap(domainerrors.ErrStoreUnavailable, "connection refused")).
		Once()

	_, err := svc.Search(context.Background(), entity.SearchCriteria{Geofence: fenceAt(1200)})
	assert.ErrorIs(t, err, domainerrors.ErrStoreUnavailable)
}

func TestSearchService_GeofenceProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for round := range 25 {
		candidates := make([]*entity.Location, 200)
		for i := range candidates {
			candidates[i] = &entity.Location{
				RowID:     int64(i + 1),
				Postcode:  []string{"AB1 1AA", "AB1 1AB", "CD2 2CD"}[rng.IntN(3)],
				Latitude:  buckinghamPalace.Lat() + (rng.Float64()-0.5)*0.1,
				Longitude: buckinghamPalace.Lon() + (rng.Float64()-0.5)*0.1,
			}
		}
		radius := 500 + rng.Float64()*4000
		limit := 1 + rng.IntN(60)

		mockLocationRepo, svc := newSearchService(t, distance.NewHaversine())
		mockLocationRepo.EXPECT().
			ScanWithinBox(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			RunAndReturn(visitRows(candidates)).
			Once()

		result, err := svc.Search(context.Background(), entity.SearchCriteria{Limit: limit, Geofence: fenceAt(radius)})
		require.NoError(t, err, "round %d", round)

		var inside []entity.GeofenceResult
		for _, c := range candidates {
			if d := distance.HaversineMeters(buckinghamPalace, c.Point()); d <= radius {
				inside = append(inside, entity.GeofenceResult{Location: c, DistanceMeters: d, WithinGeofence: true})
			}
		}
		slices.SortFunc(inside, compareResults)
		want := inside[:min(limit, len(inside))]

		require.Len(t, result.Results, len(want), "round %d", round)
		assert.Equal(t, len(result.Results), result.TotalCount)
		for i, r := range result.Results {
			assert.Equal(t, want[i].RowID, r.RowID, "round %d rank %d", round, i)
			assert.Equal(t, r.DistanceMeters <= radius, r.WithinGeofence)
			assert.InDelta(t, distance.HaversineMeters(buckinghamPalace, r.Point()), r.DistanceMeters, 1e-9)
			if i > 0 {
				assert.LessOrEqual(t, compareResults(result.Results[i-1], r), 0)
			}
		}
	}
}
