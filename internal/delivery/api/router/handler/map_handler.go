package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"nearby/internal/delivery/api/response"
	"nearby/internal/domain/service"
	"nearby/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb/maptile"
	"go.uber.org/fx"
)

// maxTileZoom is the deepest zoom level a PMTiles v3 archive can address.
const maxTileZoom = 31

// MapHandlerParams holds dependencies for MapHandler, injected by Fx.
type MapHandlerParams struct {
	fx.In

	Library service.MapLibrary
	Logger  *slog.Logger
}

// MapHandler serves the tiles of the map library
type MapHandler struct {
	library service.MapLibrary
	logger  *slog.Logger
}

// NewMapHandler is the constructor for MapHandler
func NewMapHandler(params MapHandlerParams) *MapHandler {
	return &MapHandler{
		library: params.Library,
		logger:  params.Logger,
	}
}

// Tile serves one encoded tile
func (h *MapHandler) Tile(c echo.Context) error {
	tile, ok := parseTile(c.Param("z"), c.Param("x"), c.Param("y"))
	if !ok {
		return response.BadRequest(c, "INVALID_TILE", "Invalid tile coordinates")
	}

	data, headers, err := h.library.Tile(c.Request().Context(), tile)
	if errors.Is(err, service.ErrTileNotFound) {
		return c.NoContent(http.StatusNoContent)
	}
	if err != nil {
		return response.HandleAppError(c, err)
	}

	contentType := "application/octet-stream"
	for k, v := range headers {
		if http.CanonicalHeaderKey(k) == echo.HeaderContentType {
			contentType = v

			continue
		}
		c.Response().Header().Set(k, v)
	}

	return c.Blob(http.StatusOK, contentType, data)
}

func parseTile(zParam, xParam, yParam string) (maptile.Tile, bool) {
	z, err := strconv.ParseUint(zParam, 10, 32)
	if err != nil || z > maxTileZoom {
		return maptile.Tile{}, false
	}
	x, err := strconv.ParseUint(xParam, 10, 32)
	if err != nil {
		return maptile.Tile{}, false
	}
	y, err := strconv.ParseUint(yParam, 10, 32)
	if err != nil {
		return maptile.Tile{}, false
	}

	limit := uint64(1) << z
	if x >= limit || y >= limit {
		return maptile.Tile{}, false
	}

	return maptile.New(uint32(x), uint32(y), maptile.Zoom(z)), true
}
