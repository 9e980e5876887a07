package service

import (
	"context"
)

// NotificationService pushes a share fallback to the device a session registered.
// A data entry under "link" is opened when the notification is clicked.
type NotificationService interface {
	SendSingleNotification(ctx context.Context, token, title, body string, data map[string]string) error
}
