package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"locator/config"
	httpmiddleware "locator/internal/delivery/http/middleware"
	"locator/internal/delivery/http/response"
	"locator/internal/delivery/http/router"
	"locator/internal/delivery/http/router/handler"
	"locator/internal/domain/entity"
	domainerrors "locator/internal/domain/errors"
	"locator/internal/domain/repository"
	"locator/internal/errors"
	"locator/internal/infra/cache"
	"locator/internal/infra/distance"
	"locator/internal/infra/metrics"
	mockRepo "locator/internal/mocks/repository"
	mockUsecase "locator/internal/mocks/usecase"
	"locator/internal/usecase"
	"locator/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var palace = &entity.Location{
	RowID:     1,
	Postcode:  "SW1A 1AA",
	Latitude:  51.501009,
	Longitude: -0.141588,
	Town:      "LONDON",
	County:    "GREATER LONDON",
	Street1:   "DOWNING STREET",
	District1: "WESTMINSTER",
}

type testServer struct {
	echo    *echo.Echo
	repo    *mockRepo.MockLocationRepository
	metrics *metrics.Metrics
}

type usecases struct {
	location usecase.LocationUsecase
	search   usecase.SearchUsecase
	health   usecase.HealthUsecase
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildEcho(cfg *config.Config, m *metrics.Metrics, ucs usecases) *echo.Echo {
	logger := discardLogger()

	return NewEcho(HTTPParams{
		Config: cfg,
		Logger: logger,
		RouterParams: router.RouterParams{
			LocationHandler: handler.NewLocationHandler(handler.LocationHandlerParams{LocationUC: ucs.location, Logger: logger}),
			SearchHandler:   handler.NewSearchHandler(handler.SearchHandlerParams{SearchUC: ucs.search, Config: cfg, Logger: logger}),
			HealthHandler:   handler.NewHealthHandler(handler.HealthHandlerParams{HealthUC: ucs.health}),
			Metrics:         m,
		},
		ErrorMiddleware:     httpmiddleware.NewErrorMiddleware(logger),
		LoggerMiddleware:    httpmiddleware.NewLoggerMiddleware(logger, cfg, m),
		RequestIDMiddleware: httpmiddleware.NewRequestIDMiddleware(logger),
	})
}

// newTestServer wires the real use cases over a mocked repository.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := testConfig()
	m := metrics.New()
	logger := discardLogger()
	repo := mockRepo.NewMockLocationRepository(t)
	strategy := distance.NewHaversine()
	postcodes := cache.NewPostcodeCache(cfg.Cache, m, logger)

	e := buildEcho(cfg, m, usecases{
		location: impl.NewLocationService(repo, postcodes),
		search:   impl.NewSearchService(repo, strategy, cfg, logger),
		health:   impl.NewHealthService(repo, strategy, postcodes, logger),
	})

	return &testServer{echo: e, repo: repo, metrics: m}
}

func (s *testServer) get(target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var body T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())

	return body
}

func TestGetLocation_ExactMatch(t *testing.T) {
	s := newTestServer(t)
	s.repo.EXPECT().FindByPostcode(mock.Anything, "SW1A 1AA").Return(palace, nil).Once()

	rec := s.get("/location/SW1A%201AA")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	body := decode[response.Location](t, rec)
	assert.Equal(t, "SW1A 1AA", body.Postcode)
	assert.Equal(t, 51.501009, body.Latitude)
	assert.Equal(t, -0.141588, body.Longitude)
	assert.Equal(t, "DOWNING STREET", body.Street1)
	assert.Nil(t, body.WithinGeofence)
	assert.Nil(t, body.Distance)

	// Cached: the lowercase compact spelling makes no second store call.
	rec = s.get("/location/sw1a1aa")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetLocation_NotFound(t *testing.T) {
	s := newTestServer(t)
	s.repo.EXPECT().FindByPostcode(mock.Anything, "ZZ9 9ZZ").Return(nil, repository.ErrLocationNotFound).Once()

	rec := s.get("/location/ZZ99ZZ")
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decode[response.ErrorResponse](t, rec)
	assert.Equal(t, "POSTCODE_NOT_FOUND", body.Error.Code)
}

func TestGetLocation_InvalidFormat(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/location/INVALID")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decode[response.ErrorResponse](t, rec)
	assert.Equal(t, "INVALID_POSTCODE", body.Error.Code)
}

func TestSearchSpatial_ZeroRadius(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/search/spatial?center_lat=51.501009&center_lon=-0.141588&radius_meters=0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"locations": [], "total_count": 0, "within_radius_count": 0}`, rec.Body.String())
}

func streamRows(rows ...*entity.Location) func(context.Context, entity.FieldFilter, orb.Bound, repository.LocationVisitor) error {
	return func(_ context.Context, _ entity.FieldFilter, _ orb.Bound, visit repository.LocationVisitor) error {
		for _, row := range rows {
			if err := visit(row); err != nil {
				return err
			}
		}

		return nil
	}
}

func TestSearchSpatial_DefaultsAndRanking(t *testing.T) {
	s := newTestServer(t)

	farther := &entity.Location{RowID: 2, Postcode: "SW1A 2AA", Latitude: 51.503541, Longitude: -0.127670}
	s.repo.EXPECT().
		ScanWithinBox(mock.Anything, entity.FieldFilter{}, mock.Anything, mock.Anything).
		RunAndReturn(streamRows(farther, palace)).
		Once()

	rec := s.get("/search/spatial?center_lat=51.501009&center_lon=-0.141588")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[response.LocationList](t, rec)
	require.Len(t, body.Locations, 2)
	assert.Equal(t, "SW1A 1AA", body.Locations[0].Postcode)
	assert.Equal(t, "SW1A 2AA", body.Locations[1].Postcode)
	require.NotNil(t, body.Locations[1].Distance)
	assert.Greater(t, *body.Locations[1].Distance, 900.0)
	require.NotNil(t, body.Locations[1].WithinGeofence)
	assert.True(t, *body.Locations[1].WithinGeofence)
	assert.Equal(t, 2, body.TotalCount)
	assert.Equal(t, 2, body.WithinRadiusCount)
}

func TestSearchSpatial_RequiresCenter(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{
		"/search/spatial",
		"/search/spatial?center_lat=51.5",
		"/search/spatial?center_lat=91&center_lon=0",
		"/search/spatial?center_lat=abc&center_lon=0",
	} {
		rec := s.get(target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestSearchTown_Limit(t *testing.T) {
	s := newTestServer(t)

	rows := []*entity.Location{
		{RowID: 1, Postcode: "SW1A 1AA", Town: "LONDON"},
		{RowID: 7, Postcode: "CR0 1AA", Town: "CROYDON", District1: "LONDON BOROUGH OF CROYDON"},
	}
	s.repo.EXPECT().
		FindByField(mock.Anything, entity.FieldFilter{Field: entity.SearchFieldTown, Pattern: "LON"}, 5).
		Return(rows, nil).
		Once()

	rec := s.get("/search/town/LON?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[response.LocationList](t, rec)
	assert.LessOrEqual(t, len(body.Locations), 5)
	for _, location := range body.Locations {
		haystack := strings.ToUpper(location.Town + " " + location.District1 + " " + location.District2)
		assert.Contains(t, haystack, "LON")
		assert.Nil(t, location.Distance)
	}
	assert.Equal(t, 2, body.TotalCount)
	assert.Equal(t, 2, body.WithinRadiusCount)
}

func TestSearch_QueryValidation(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{
		"/search/postcode/SW1A-1",
		"/search/postcode/SW1A1AAXX",
		"/search/town/Lon%25",
		"/search/county/Kent1",
		"/search/town/LON?limit=0",
		"/search/town/LON?limit=5001",
		"/search/town/LON?center_lat=51.5&center_lon=-0.1",
		"/search/county/KENT?radius_meters=60000&center_lat=51&center_lon=0",
	} {
		rec := s.get(target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestSearchPostcode_WithGeofence(t *testing.T) {
	s := newTestServer(t)

	s.repo.EXPECT().
		ScanWithinBox(mock.Anything, entity.FieldFilter{Field: entity.SearchFieldPostcode, Pattern: "SW1A"}, mock.Anything, mock.Anything).
		RunAndReturn(streamRows(palace)).
		Once()

	rec := s.get("/search/postcode/sw1a?center_lat=51.501009&center_lon=-0.141588&radius_meters=100")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[response.LocationList](t, rec)
	require.Len(t, body.Locations, 1)
	require.NotNil(t, body.Locations[0].Distance)
	assert.InDelta(t, 0, *body.Locations[0].Distance, 1e-6)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	s.repo.EXPECT().Ping(mock.Anything).Return(nil).Once()
	s.repo.EXPECT().Count(mock.Anything).Return(int64(3), nil).Once()

	rec := s.get("/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"status": "healthy",
		"database": {"connected": true, "record_count": 3},
		"distance_strategy": "haversine",
		"cache": {"size": 0, "capacity": 1000}
	}`, rec.Body.String())
}

func TestHealth_DegradedStillAnswers200(t *testing.T) {
	s := newTestServer(t)
	s.repo.EXPECT().Ping(mock.Anything).Return(errors.Wrap(domainerrors.ErrStoreUnavailable, "database is locked")).Once()

	rec := s.get("/health")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[usecase.HealthReport](t, rec)
	assert.Equal(t, usecase.HealthStatusDegraded, body.Status)
	assert.False(t, body.Database.Connected)
	assert.NotContains(t, body.Database.Error, "locked")
}

func TestErrors_AreSanitized(t *testing.T) {
	cfg := testConfig()
	m := metrics.New()
	locationUC := mockUsecase.NewMockLocationUsecase(t)
	searchUC := mockUsecase.NewMockSearchUsecase(t)
	e := buildEcho(cfg, m, usecases{
		location: locationUC,
		search:   searchUC,
		health:   mockUsecase.NewMockHealthUsecase(t),
	})

	locationUC.EXPECT().
		Lookup(mock.Anything, "SW1A 1AA").
		Return(nil, errors.Wrap(domainerrors.ErrStoreUnavailable, "dial tcp 10.1.2.3:5432: connection refused")).
		Once()
	searchUC.EXPECT().
		Search(mock.Anything, mock.Anything).
		Return(nil, domainerrors.NewDatabaseExecuteError(errors.New(`near "FROM": syntax error`), "failed to search locations")).
		Once()
	locationUC.EXPECT().
		Lookup(mock.Anything, "M1 1AE").
		Return(nil, errors.New("boom: secret internals")).
		Once()

	tests := []struct {
		target string
		status int
		code   string
	}{
		{target: "/location/SW1A%201AA", status: http.StatusServiceUnavailable, code: "STORE_UNAVAILABLE"},
		{target: "/search/county/KENT", status: http.StatusInternalServerError, code: "DATABASE_EXECUTE_FAILED"},
		{target: "/location/M1%201AE", status: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

		assert.Equal(t, tt.status, rec.Code, tt.target)
		body := decode[response.ErrorResponse](t, rec)
		assert.Equal(t, tt.code, body.Error.Code)
		for _, leaked := range []string{"10.1.2.3", "syntax error", "secret"} {
			assert.NotContains(t, rec.Body.String(), leaked)
		}
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "/location/:postcode", "503")))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/location/INVALID")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `locator_http_requests_total{method="GET",path="/location/:postcode",status="422"} 1`)
}

func TestRequestID_IsPropagated(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/location/INVALID", nil)
	req.Header.Set(echo.HeaderXRequestID, "trace-123")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, "trace-123", rec.Header().Get(echo.HeaderXRequestID))
}

func TestRateLimiter(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit.Enabled = true
	cfg.HTTP.RateLimit.PerSecond = 0.001
	cfg.HTTP.RateLimit.Burst = 1
	locationUC := mockUsecase.NewMockLocationUsecase(t)
	e := buildEcho(cfg, metrics.New(), usecases{
		location: locationUC,
		search:   mockUsecase.NewMockSearchUsecase(t),
		health:   mockUsecase.NewMockHealthUsecase(t),
	})

	locationUC.EXPECT().Lookup(mock.Anything, "SW1A 1AA").Return(palace, nil).Once()

	statuses := make([]int, 0, 2)
	for range 2 {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/location/SW1A%201AA", nil))
		statuses = append(statuses, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, statuses)
}
