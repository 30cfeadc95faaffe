// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"locator/internal/delivery/http/router/handler"
	"locator/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	LocationHandler *handler.LocationHandler
	SearchHandler   *handler.SearchHandler
	HealthHandler   *handler.HealthHandler
	Metrics         *metrics.Metrics
}

// router holds all the handlers that need to be registered.
type router struct {
	locationHandler *handler.LocationHandler
	searchHandler   *handler.SearchHandler
	healthHandler   *handler.HealthHandler
	metrics         *metrics.Metrics
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		locationHandler: params.LocationHandler,
		searchHandler:   params.SearchHandler,
		healthHandler:   params.HealthHandler,
		metrics:         params.Metrics,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", r.healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(r.metrics.Handler()))

	e.GET("/location/:postcode", r.locationHandler.GetLocation)

	searchGroup := e.Group("/search")
	{
		searchGroup.GET("/spatial", r.searchHandler.SearchSpatial)
		searchGroup.GET("/postcode/:query", r.searchHandler.SearchPostcode)
		searchGroup.GET("/town/:query", r.searchHandler.SearchTown)
		searchGroup.GET("/county/:query", r.searchHandler.SearchCounty)
	}
}
