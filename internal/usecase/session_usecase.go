// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"
	"time"
)

// SessionRegistry keeps the live explorer sessions.
type SessionRegistry interface {
	// Create registers a new session bound to the registry lifetime.
	Create(ctx context.Context) (*Session, error)

	// Get returns a live session and records activity, or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	Remove(id string)

	// Sweep closes sessions idle since before now minus the TTL.
	Sweep(now time.Time) int

	Len() int
}
