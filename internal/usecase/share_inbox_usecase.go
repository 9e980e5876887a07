package usecase

import (
	"context"
	"time"

	"nearby/internal/domain/service"
)

// InboxEntry records a native share received from the share topic.
type InboxEntry struct {
	MessageID  string    `json:"message_id"`
	RequestID  string    `json:"request_id,omitempty"`
	SessionID  string    `json:"session_id"`
	PlaceID    string    `json:"place_id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	FileCount  int       `json:"file_count"`
	Link       string    `json:"link"`
	ReceivedAt time.Time `json:"received_at"`
}

// ShareInboxUsecase turns native shares delivered through Pub/Sub into share
// pages. Deliveries are at least once, so Receive is idempotent per message.
type ShareInboxUsecase interface {
	Receive(ctx context.Context, messageID string, payload *service.SharePayload) (*InboxEntry, error)
}
