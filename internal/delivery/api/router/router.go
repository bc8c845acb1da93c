// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"beacon/internal/delivery/api/middleware"
	"beacon/internal/delivery/api/router/handler"
	"beacon/internal/delivery/gateway"
	"beacon/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	Gateway             *gateway.Gateway
	RealtimeHandler     *handler.RealtimeHandler
	ListingEventHandler *handler.ListingEventHandler
	AuthMiddleware      *middleware.AuthMiddleware
	Registry            *prometheus.Registry
}

// router holds all the handlers that need to be registered.
type router struct {
	gateway             *gateway.Gateway
	realtimeHandler     *handler.RealtimeHandler
	listingEventHandler *handler.ListingEventHandler
	authMiddleware      *middleware.AuthMiddleware
	registry            *prometheus.Registry
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		gateway:             params.Gateway,
		realtimeHandler:     params.RealtimeHandler,
		listingEventHandler: params.ListingEventHandler,
		authMiddleware:      params.AuthMiddleware,
		registry:            params.Registry,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))

	// The websocket handshake authenticates itself; browsers cannot set headers on it.
	e.GET("/ws", r.gateway.ServeWS)

	apiV1 := e.Group("/api/v1")
	apiV1.Use(r.authMiddleware.Authenticate)

	realtimeGroup := apiV1.Group("/realtime")
	{
		realtimeGroup.GET("/stats", r.realtimeHandler.GetStats)
		realtimeGroup.GET("/online-users", r.realtimeHandler.GetOnlineUsers)
	}

	listingsGroup := apiV1.Group("/listings")
	listingsGroup.Use(r.authMiddleware.RequireRole(entity.RoleService))
	{
		listingsGroup.POST("/events", r.listingEventHandler.PublishListingEvent)
	}
}
