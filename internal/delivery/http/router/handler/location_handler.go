package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "locator/internal/delivery/context"
	"locator/internal/delivery/http/response"
	"locator/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// LocationHandlerParams holds dependencies for LocationHandler, injected by Fx.
type LocationHandlerParams struct {
	fx.In

	LocationUC usecase.LocationUsecase
	Logger     *slog.Logger
}

// LocationHandler serves exact postcode lookups
type LocationHandler struct {
	locationUC usecase.LocationUsecase
	logger     *slog.Logger
}

// NewLocationHandler is the constructor for LocationHandler
func NewLocationHandler(params LocationHandlerParams) *LocationHandler {
	return &LocationHandler{
		locationUC: params.LocationUC,
		logger:     params.Logger,
	}
}

// GetLocation handles GET /location/:postcode
func (h *LocationHandler) GetLocation(c echo.Context) error {
	ctx := c.Request().Context()
	postcode := c.Param("postcode")

	location, err := h.locationUC.Lookup(ctx, postcode)
	if err != nil {
		return err
	}

	deliverycontext.GetLoggerOrDefault(ctx, h.logger).DebugContext(ctx, "Postcode resolved",
		slog.String("postcode", location.Postcode))

	return c.JSON(http.StatusOK, response.NewLocation(location))
}
