package usecase

import (
	"context"
)

// Share methods
const (
	ShareMethodNative   = "native"
	ShareMethodFallback = "fallback"
)

// ShareResult tells how a share was delivered.
type ShareResult struct {
	Method string `json:"method"`
	// URL of the fallback page, empty for native shares.
	URL string `json:"url,omitempty"`
}

// ShareUsecase shares the selected place of a session.
type ShareUsecase interface {
	// ShareCurrentPlace fails only when no place is selected or the
	// fallback page could not be stored.
	ShareCurrentPlace(ctx context.Context, sess *Session) (*ShareResult, error)

	OpenSharePage(ctx context.Context, token string) ([]byte, error)

	ShareQRCode(ctx context.Context, token string) ([]byte, error)
}
