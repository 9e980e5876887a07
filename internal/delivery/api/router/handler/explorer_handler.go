// Package handler contains the HTTP handlers for the application.
package handler

import (
	"io"
	"log/slog"
	"net/http"

	"nearby/internal/delivery/api/response"
	deliverycontext "nearby/internal/delivery/context"
	"nearby/internal/domain/entity"
	"nearby/internal/domain/service"
	"nearby/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const photoFormField = "photo"

// ExplorerHandlerParams holds dependencies for ExplorerHandler, injected by Fx.
type ExplorerHandlerParams struct {
	fx.In

	ExplorerUC usecase.ExplorerUsecase
	Logger     *slog.Logger
}

// ExplorerHandler exposes explorer sessions over HTTP
type ExplorerHandler struct {
	explorerUC usecase.ExplorerUsecase
	logger     *slog.Logger
}

// NewExplorerHandler is the constructor for ExplorerHandler
func NewExplorerHandler(params ExplorerHandlerParams) *ExplorerHandler {
	return &ExplorerHandler{
		explorerUC: params.ExplorerUC,
		logger:     params.Logger,
	}
}

// ReportPositionRequest is a position fix sent by the client device
type ReportPositionRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	Accuracy  *float64 `json:"accuracy,omitempty" validate:"omitempty,min=0"`
}

// ReportPositionErrorRequest is a position failure sent by the client device
type ReportPositionErrorRequest struct {
	Code    int    `json:"code" validate:"required,oneof=1 2 3"`
	Message string `json:"message" validate:"max=512"`
}

// SearchRequest represents the request body of a nearby search
type SearchRequest struct {
	Category string `json:"category" validate:"max=128"`
}

// RegisterDeviceRequest represents the request body for registering a push token
type RegisterDeviceRequest struct {
	DeviceToken string `json:"device_token" validate:"required,max=4096"`
}

// LocationPendingResponse tells the device whether a position is awaited
type LocationPendingResponse struct {
	Pending bool `json:"pending"`
}

func (h *ExplorerHandler) sessionID(c echo.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		return "", false
	}

	return id.String(), true
}

func invalidSessionID(c echo.Context) error {
	return response.BadRequest(c, "INVALID_SESSION_ID", "Invalid session ID")
}

// StartSession creates an explorer session and boots it in the background
func (h *ExplorerHandler) StartSession(c echo.Context) error {
	state, err := h.explorerUC.StartSession(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, state)
}

// GetSession returns the current state of a session
func (h *ExplorerHandler) GetSession(c echo.Context) error {
	id, ok := h.sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	state, err := h.explorerUC.GetSession(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, state)
}

// CloseSession ends a session
func (h *ExplorerHandler) CloseSession(c echo.Context) error {
	id, ok := h.sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	if err := h.explorerUC.CloseSession(c.Request().Context(), id); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// RefreshLocation asks the session geolocator for a new position
func (h *ExplorerHandler) RefreshLocation(c echo.Context) error {
	id, ok := h.sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	state, err := h.explorerUC.RefreshLocation(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, state)
}

// ReportPosition delivers a device position to the session
func (h *ExplorerHandler) ReportPosition(c echo.Context) error {
	id, ok := h.sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	var req ReportPositionRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid position input")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	coord := entity.NewCoordinate(*req.Latitude, *req.Longitude)
	if req.Accuracy != nil {
		coord = coord.WithAccuracy(*req.Accuracy)
	}

	if err := h.explorerUC.ReportPosition(c.Request().Context(), id, coord); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ReportPositionError delivers a device position failure to the session
func (h *ExplorerHandler) ReportPositionError(c echo.Context) error {
	id, ok := h.sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	var req ReportPositionErrorRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid position error input")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	err := h.explorerUC.ReportPositionError(c.Request().Context(), id, service.PositionErrorCode(req.Code), req.Message)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// LocationPending tells the device whether the session waits for a position
func (h *ExplorerHandler) LocationPending(c echo.Context) error {
	id, ok := h.sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	state, err := h.explorerUC.GetSession(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, LocationPendingResponse{Pending: state.LocationPending})
}

// Search finds places near the session location
func (h *ExplorerHandler) Search(c echo.Context) error {
	id, ok := h.sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid search input")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	result, err := h.explorerUC.Search(c.Request().Context(), id, req.Category)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result)
}

// ListPlaces returns the current results of the session
func (h *ExplorerHandler) ListPlaces(c echo.Context) error {
	id, ok := h.sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	places, err := h.explorerUC.ListPlaces(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, places)
}

// SelectPlace opens the details of a place
func (h *ExplorerHandler) SelectPlace(c echo.Context) error {
	id, ok := h.sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	details, err := h.explorerUC.SelectPlace(c.Request().Context(), id, c.Param("placeID"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, details)
}

// ClosePlace closes the details panel
func (h *ExplorerHandler) ClosePlace(c echo.Context) error {
	id, ok := h.sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	if err := h.explorerUC.ClosePlace(c.Request().Context(), id); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// AttachPhoto stores an uploaded photo for the selected place
func (h *ExplorerHandler) AttachPhoto(c echo.Context) error {
	id, ok := h.sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	fileHeader, err := c.FormFile(photoFormField)
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "A photo file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Unreadable photo file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger).Warn("Failed to read uploaded photo", slog.Any("error", err))

		return response.BindingError(c, "INVALID_INPUT", "Unreadable photo file")
	}

	details, err := h.explorerUC.AttachPhoto(c.Request().Context(), id, fileHeader.Filename, data)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, details)
}

// PlacePhotos returns the stored photos of a place
func (h *ExplorerHandler) PlacePhotos(c echo.Context) error {
	id, ok := h.sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	photos, err := h.explorerUC.PlacePhotos(c.Request().Context(), id, c.Param("placeID"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, photos)
}

// ClearPhotos empties the photo store
func (h *ExplorerHandler) ClearPhotos(c echo.Context) error {
	if err := h.explorerUC.ClearPhotos(c.Request().Context()); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// Share shares the selected place
func (h *ExplorerHandler) Share(c echo.Context) error {
	id, ok := h.sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	result, err := h.explorerUC.Share(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result)
}

// RegisterDevice records the push token that fallback shares are sent to
func (h *ExplorerHandler) RegisterDevice(c echo.Context) error {
	id, ok := h.sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	var req RegisterDeviceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid device input")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := h.explorerUC.RegisterDevice(c.Request().Context(), id, req.DeviceToken); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// MapState returns the camera and markers of the session map
func (h *ExplorerHandler) MapState(c echo.Context) error {
	id, ok := h.sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	state, err := h.explorerUC.MapState(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, state)
}
