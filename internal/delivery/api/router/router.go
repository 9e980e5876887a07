// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"nearby/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	ExplorerHandler *handler.ExplorerHandler
	MapHandler      *handler.MapHandler
	ShareHandler    *handler.ShareHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	explorerHandler *handler.ExplorerHandler
	mapHandler      *handler.MapHandler
	shareHandler    *handler.ShareHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		explorerHandler: params.ExplorerHandler,
		mapHandler:      params.MapHandler,
		shareHandler:    params.ShareHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Fallback share pages are opened directly by browsers and devices
	sharesGroup := e.Group("/shares")
	{
		sharesGroup.GET("/:token", r.shareHandler.Page)
		sharesGroup.GET("/:token/qr.png", r.shareHandler.QRCode)
	}

	api := e.Group("/api")

	api.GET("/map/tiles/:z/:x/:y", r.mapHandler.Tile)
	api.DELETE("/photos", r.explorerHandler.ClearPhotos)

	api.POST("/sessions", r.explorerHandler.StartSession)

	sessionGroup := api.Group("/sessions/:sessionID")
	{
		sessionGroup.GET("", r.explorerHandler.GetSession)
		sessionGroup.DELETE("", r.explorerHandler.CloseSession)

		sessionGroup.POST("/location/refresh", r.explorerHandler.RefreshLocation)
		sessionGroup.POST("/location/report", r.explorerHandler.ReportPosition)
		sessionGroup.POST("/location/error", r.explorerHandler.ReportPositionError)
		sessionGroup.GET("/location/pending", r.explorerHandler.LocationPending)

		sessionGroup.POST("/search", r.explorerHandler.Search)
		sessionGroup.GET("/places", r.explorerHandler.ListPlaces)
		sessionGroup.POST("/places/:placeID/select", r.explorerHandler.SelectPlace)
		sessionGroup.GET("/places/:placeID/photos", r.explorerHandler.PlacePhotos)
		sessionGroup.DELETE("/selection", r.explorerHandler.ClosePlace)

		sessionGroup.POST("/photos", r.explorerHandler.AttachPhoto)
		sessionGroup.POST("/share", r.explorerHandler.Share)
		sessionGroup.POST("/device", r.explorerHandler.RegisterDevice)
		sessionGroup.GET("/map", r.explorerHandler.MapState)
	}
}
