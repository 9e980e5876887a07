package handler

import (
	"log/slog"
	"net/http"

	"nearby/internal/delivery/api/response"
	"nearby/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// ShareHandlerParams holds dependencies for ShareHandler, injected by Fx.
type ShareHandlerParams struct {
	fx.In

	ShareUC usecase.ShareUsecase
	Logger  *slog.Logger
}

// ShareHandler serves fallback share pages
type ShareHandler struct {
	shareUC usecase.ShareUsecase
	logger  *slog.Logger
}

// NewShareHandler is the constructor for ShareHandler
func NewShareHandler(params ShareHandlerParams) *ShareHandler {
	return &ShareHandler{
		shareUC: params.ShareUC,
		logger:  params.Logger,
	}
}

// Page renders the share page behind a link token
func (h *ShareHandler) Page(c echo.Context) error {
	page, err := h.shareUC.OpenSharePage(c.Request().Context(), c.Param("token"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	c.Response().Header().Set("Cache-Control", "private, no-store")

	return c.HTMLBlob(http.StatusOK, page)
}

// QRCode returns a PNG QR code of the share link
func (h *ShareHandler) QRCode(c echo.Context) error {
	png, err := h.shareUC.ShareQRCode(c.Request().Context(), c.Param("token"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}
