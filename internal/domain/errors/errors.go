package errors

import (
	"fmt"
	"net/http"

	"nearby/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details == "" {
		return e.message
	}

	return e.message + ": " + e.details
}

// Is matches any BaseError carrying the same business code, so that a
// WithDetails copy still satisfies errors.Is against the predefined value.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return e.errorCode == t.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Map library errors
	ErrMapLibraryUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"MAP_LIBRARY_UNAVAILABLE",
		"Map library failed to load",
		"",
	)

	ErrMapInit = NewBaseError(
		http.StatusInternalServerError,
		"MAP_INIT_ERROR",
		"Map initialization error",
		"",
	)

	// Location errors
	ErrLocationUnsupported = NewBaseError(
		http.StatusNotImplemented,
		"LOCATION_UNSUPPORTED",
		"Geolocation not supported",
		"",
	)

	ErrLocationDenied = NewBaseError(
		http.StatusForbidden,
		"LOCATION_DENIED",
		"Location permission denied",
		"",
	)

	ErrLocationTimeout = NewBaseError(
		http.StatusGatewayTimeout,
		"LOCATION_TIMEOUT",
		"Location request timed out",
		"",
	)

	ErrLocationFailure = NewBaseError(
		http.StatusServiceUnavailable,
		"LOCATION_FAILURE",
		"Location unavailable",
		"",
	)

	ErrLocationRequired = NewBaseError(
		http.StatusPreconditionRequired,
		"LOCATION_REQUIRED",
		"Need location to search",
		"",
	)

	// Search errors
	ErrNoCoordinates = NewBaseError(
		http.StatusBadRequest,
		"NO_COORDINATES",
		"No coordinates provided",
		"",
	)

	// Place and photo errors
	ErrNoPlaceSelected = NewBaseError(
		http.StatusConflict,
		"NO_PLACE_SELECTED",
		"No place selected",
		"",
	)

	ErrPlaceNotFound = NewBaseError(
		http.StatusNotFound,
		"PLACE_NOT_FOUND",
		"Place is not in the current results",
		"",
	)

	// Session errors
	ErrSessionNotFound = NewBaseError(
		http.StatusNotFound,
		"SESSION_NOT_FOUND",
		"Session not found or expired",
		"",
	)

	// Share errors
	ErrShareLinkInvalid = NewBaseError(
		http.StatusNotFound,
		"SHARE_LINK_INVALID",
		"Share link is invalid or expired",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input validation failed",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)
)

// PlacesAPIError is returned when the geocoding service answers with a
// non-success status. It keeps the status code and the raw response body.
type PlacesAPIError struct {
	Status int
	Body   string
}

// NewPlacesAPIError creates a geocoding service error
func NewPlacesAPIError(status int, body string) *PlacesAPIError {
	return &PlacesAPIError{Status: status, Body: body}
}

// Error implements the error interface
func (e *PlacesAPIError) Error() string {
	return fmt.Sprintf("Places API error %d: %s", e.Status, e.Body)
}

// HTTPCode returns the HTTP status code
func (e *PlacesAPIError) HTTPCode() int {
	return http.StatusBadGateway
}

// ErrorCode returns the business error code
func (e *PlacesAPIError) ErrorCode() string {
	return "PLACES_API_ERROR"
}

// Message returns the user-friendly error message
func (e *PlacesAPIError) Message() string {
	return fmt.Sprintf("Places API error %d", e.Status)
}

// Details returns the response body of the failed call
func (e *PlacesAPIError) Details() string {
	return e.Body
}

// StorageError represents a key-value store failure, implementing the AppError interface
type StorageError struct {
	err     error
	details string
}

// NewStorageError creates a storage-related error
func NewStorageError(err error, details string) AppError {
	return &StorageError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *StorageError) Error() string {
	return errors.Wrap(e.err, "storage operation failed").Error()
}

// Unwrap exposes the underlying store error
func (e *StorageError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *StorageError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *StorageError) ErrorCode() string {
	return "STORAGE_FAILED"
}

// Message returns the user-friendly error message
func (e *StorageError) Message() string {
	return "Storage operation failed"
}

// Details returns detailed error information
func (e *StorageError) Details() string {
	return e.details
}
