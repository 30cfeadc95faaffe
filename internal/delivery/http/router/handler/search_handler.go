package handler

import (
	"log/slog"
	"net/http"

	"locator/config"
	deliverycontext "locator/internal/delivery/context"
	"locator/internal/delivery/http/response"
	"locator/internal/domain/entity"
	domainerrors "locator/internal/domain/errors"
	"locator/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb"
	"go.uber.org/fx"
)

// SearchHandlerParams holds dependencies for SearchHandler, injected by Fx.
type SearchHandlerParams struct {
	fx.In

	SearchUC usecase.SearchUsecase
	Config   *config.Config
	Logger   *slog.Logger
}

// SearchHandler serves field and spatial searches
type SearchHandler struct {
	searchUC      usecase.SearchUsecase
	spatialRadius float64
	logger        *slog.Logger
}

// NewSearchHandler is the constructor for SearchHandler
func NewSearchHandler(params SearchHandlerParams) *SearchHandler {
	radius := params.Config.Search.SpatialDefaultRadiusMeters
	if radius <= 0 {
		radius = config.DefaultSpatialRadiusMeters
	}

	return &SearchHandler{
		searchUC:      params.SearchUC,
		spatialRadius: radius,
		logger:        params.Logger,
	}
}

// GeofenceQuery holds the optional query-string parameters shared by every search.
// Upper bounds on limit and radius come from config and are enforced by the use case.
type GeofenceQuery struct {
	Limit        *int     `query:"limit" validate:"omitempty,min=1"`
	CenterLat    *float64 `query:"center_lat" validate:"omitempty,min=-90,max=90"`
	CenterLon    *float64 `query:"center_lon" validate:"omitempty,min=-180,max=180"`
	RadiusMeters *float64 `query:"radius_meters" validate:"omitempty,min=0"`
}

// PostcodeSearchRequest is the input of GET /search/postcode/:query
type PostcodeSearchRequest struct {
	Query string `param:"query" validate:"required,postcode_query"`
	GeofenceQuery
}

// PlaceSearchRequest is the input of GET /search/town/:query and /search/county/:query
type PlaceSearchRequest struct {
	Query string `param:"query" validate:"required,max=100,place_name"`
	GeofenceQuery
}

// SpatialSearchRequest is the input of GET /search/spatial
type SpatialSearchRequest struct {
	CenterLat    *float64 `query:"center_lat" validate:"required,min=-90,max=90"`
	CenterLon    *float64 `query:"center_lon" validate:"required,min=-180,max=180"`
	RadiusMeters *float64 `query:"radius_meters" validate:"omitempty,min=0"`
	Limit        *int     `query:"limit" validate:"omitempty,min=1"`
}

// SearchPostcode handles GET /search/postcode/:query
func (h *SearchHandler) SearchPostcode(c echo.Context) error {
	var req PostcodeSearchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	return h.search(c, entity.SearchFieldPostcode, req.Query, req.GeofenceQuery)
}

// SearchTown handles GET /search/town/:query
func (h *SearchHandler) SearchTown(c echo.Context) error {
	var req PlaceSearchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	return h.search(c, entity.SearchFieldTown, req.Query, req.GeofenceQuery)
}

// SearchCounty handles GET /search/county/:query
func (h *SearchHandler) SearchCounty(c echo.Context) error {
	var req PlaceSearchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	return h.search(c, entity.SearchFieldCounty, req.Query, req.GeofenceQuery)
}

// SearchSpatial handles GET /search/spatial
func (h *SearchHandler) SearchSpatial(c echo.Context) error {
	var req SpatialSearchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	radius := h.spatialRadius
	if req.RadiusMeters != nil {
		radius = *req.RadiusMeters
	}

	criteria := entity.SearchCriteria{
		Limit: valueOr(req.Limit, 0),
		Geofence: &entity.Geofence{
			Center:       orb.Point{*req.CenterLon, *req.CenterLat},
			RadiusMeters: radius,
		},
	}

	return h.run(c, criteria)
}

func (h *SearchHandler) search(c echo.Context, field entity.SearchField, query string, q GeofenceQuery) error {
	criteria := entity.SearchCriteria{
		Field: field.String(),
		Query: query,
		Limit: valueOr(q.Limit, 0),
	}

	switch {
	case q.CenterLat != nil && q.CenterLon != nil && q.RadiusMeters != nil:
		criteria.Geofence = &entity.Geofence{
			Center:       orb.Point{*q.CenterLon, *q.CenterLat},
			RadiusMeters: *q.RadiusMeters,
		}
	case q.CenterLat != nil || q.CenterLon != nil || q.RadiusMeters != nil:
		return domainerrors.ErrValidationFailed.WithDetails(
			"center_lat, center_lon and radius_meters must be given together")
	}

	return h.run(c, criteria)
}

func (h *SearchHandler) run(c echo.Context, criteria entity.SearchCriteria) error {
	ctx := c.Request().Context()

	result, err := h.searchUC.Search(ctx, criteria)
	if err != nil {
		return err
	}

	deliverycontext.GetLoggerOrDefault(ctx, h.logger).DebugContext(ctx, "Search completed",
		slog.String("field", criteria.Field),
		slog.Int("total", result.TotalCount),
		slog.Int("withinRadius", result.WithinRadiusCount),
	)

	return c.JSON(http.StatusOK, response.NewLocationList(result))
}

// bindAndValidate binds path and query parameters into req and validates it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("malformed query parameters")
	}

	if err := c.Validate(req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}

func valueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}

	return *p
}
