package service

import (
	"context"
	"fmt"
	"time"

	"nearby/internal/domain/entity"
)

// PositionErrorCode mirrors the codes of the platform position API.
type PositionErrorCode int

const (
	PositionPermissionDenied    PositionErrorCode = 1
	PositionUnavailable         PositionErrorCode = 2
	PositionTimeout             PositionErrorCode = 3
	positionErrorCodeUpperBound PositionErrorCode = 4
)

// Valid reports whether the code is one of the known position error codes.
func (c PositionErrorCode) Valid() bool {
	return c >= PositionPermissionDenied && c < positionErrorCodeUpperBound
}

// PositionError is the failure reported by a Geolocator.
type PositionError struct {
	Code    PositionErrorCode
	Message string
}

func (e *PositionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("position error code %d", e.Code)
	}

	return e.Message
}

// PositionOptions configures a single position request.
type PositionOptions struct {
	HighAccuracy bool          `json:"high_accuracy"`
	MaximumAge   time.Duration `json:"maximum_age"`
	Timeout      time.Duration `json:"timeout"`
}

// Geolocator is the platform position capability.
type Geolocator interface {
	// CurrentPosition answers one position request or fails with a *PositionError.
	CurrentPosition(ctx context.Context, opts PositionOptions) (entity.Coordinate, error)
}

// PositionReporter is implemented by geolocators that are fed by the client
// device instead of answering on their own.
type PositionReporter interface {
	// ReportPosition delivers a fix to pending requests and caches it.
	ReportPosition(coord entity.Coordinate) error

	// ReportError fails the pending requests with the given code.
	ReportError(code PositionErrorCode, message string) error

	// Pending reports whether a position request is waiting for the device.
	Pending() bool
}

// GeolocatorFactory creates the geolocator of one explorer session.
type GeolocatorFactory interface {
	// NewGeolocator returns nil when positioning is not supported.
	NewGeolocator() Geolocator
}
