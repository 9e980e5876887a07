package service

import (
	"context"
)

// ShareFile is one binary attachment of a share payload.
type ShareFile struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// SharePayload is what gets handed to a native share target.
type SharePayload struct {
	RequestID string      `json:"request_id,omitempty"` // For distributed tracing
	SessionID string      `json:"session_id"`
	PlaceID   string      `json:"place_id"`
	Title     string      `json:"title"`
	Text      string      `json:"text"`
	Files     []ShareFile `json:"files"`
}

// Size returns the number of attachment bytes in the payload.
func (p *SharePayload) Size() int {
	total := len(p.Title) + len(p.Text)
	for _, f := range p.Files {
		total += len(f.Data)
	}

	return total
}

// ShareTarget is the platform's native share capability
type ShareTarget interface {
	// CanShare reports whether this exact payload can be shared
	CanShare(payload *SharePayload) bool

	// Share hands the payload over
	Share(ctx context.Context, payload *SharePayload) error

	// Close releases any resources held by the target
	Close() error
}

// FallbackPhoto is one photo shown on a fallback page.
type FallbackPhoto struct {
	FileName string
	MIMEType string
	Size     int
	DataURL  string
}

// FallbackPage is the content of the fallback share surface.
type FallbackPage struct {
	Title   string
	Address string
	Text    string
	Photos  []FallbackPhoto
}

// FallbackPresenter opens a display surface for a share that could not go
// through the native target.
type FallbackPresenter interface {
	// Present stores the page and returns the link it is reachable at.
	// deviceToken, when set, is a push token the page link is delivered to.
	Present(ctx context.Context, page *FallbackPage, deviceToken string) (string, error)

	// Open returns the rendered page behind a link token.
	Open(ctx context.Context, token string) ([]byte, error)

	// QRCode returns a PNG QR code of the link behind a token.
	QRCode(ctx context.Context, token string) ([]byte, error)
}
