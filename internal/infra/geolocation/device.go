// Package geolocation provides the position sources of explorer sessions.
package geolocation

import (
	"context"
	"sync"
	"time"

	"nearby/internal/domain/entity"
	"nearby/internal/domain/service"
	"nearby/internal/errors"
)

type deviceOutcome struct {
	coord entity.Coordinate
	err   error
}

// Device is a geolocator fed by the client device over HTTP. A request is
// answered from the cached fix when it is younger than MaximumAge, otherwise
// it waits for the next report from the device.
type Device struct {
	mu      sync.Mutex
	now     func() time.Time
	last    *entity.Coordinate
	lastAt  time.Time
	waiters map[chan deviceOutcome]struct{}
}

var (
	_ service.Geolocator       = (*Device)(nil)
	_ service.PositionReporter = (*Device)(nil)
)

// NewDevice creates a device geolocator with no cached fix.
func NewDevice() *Device {
	return newDeviceWithClock(time.Now)
}

func newDeviceWithClock(now func() time.Time) *Device {
	return &Device{
		now:     now,
		waiters: make(map[chan deviceOutcome]struct{}),
	}
}

// CurrentPosition implements service.Geolocator.
func (d *Device) CurrentPosition(ctx context.Context, opts service.PositionOptions) (entity.Coordinate, error) {
	d.mu.Lock()
	if d.last != nil && opts.MaximumAge > 0 && d.now().Sub(d.lastAt) <= opts.MaximumAge {
		coord := *d.last
		d.mu.Unlock()

		return coord, nil
	}

	waiter := make(chan deviceOutcome, 1)
	d.waiters[waiter] = struct{}{}
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.waiters, waiter)
		d.mu.Unlock()
	}()

	var timeout <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case outcome := <-waiter:
		return outcome.coord, outcome.err
	case <-timeout:
		return entity.Coordinate{}, &service.PositionError{Code: service.PositionTimeout, Message: "Timeout expired"}
	case <-ctx.Done():
		return entity.Coordinate{}, errors.Wrap(ctx.Err(), "position request cancelled")
	}
}

// ReportPosition implements service.PositionReporter.
func (d *Device) ReportPosition(coord entity.Coordinate) error {
	if !coord.Valid() {
		return errors.Errorf("invalid coordinate %f, %f", coord.Latitude, coord.Longitude)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.last = &coord
	d.lastAt = d.now()
	d.broadcast(deviceOutcome{coord: coord})

	return nil
}

// ReportError implements service.PositionReporter. The error is not cached.
func (d *Device) ReportError(code service.PositionErrorCode, message string) error {
	if !code.Valid() {
		return errors.Errorf("invalid position error code %d", code)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.broadcast(deviceOutcome{err: &service.PositionError{Code: code, Message: message}})

	return nil
}

// Pending implements service.PositionReporter.
func (d *Device) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.waiters) > 0
}

// broadcast must be called with mu held.
func (d *Device) broadcast(outcome deviceOutcome) {
	for waiter := range d.waiters {
		waiter <- outcome
		delete(d.waiters, waiter)
	}
}
