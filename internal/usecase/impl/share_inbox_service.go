package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gabriel-vasile/mimetype"

	deliverycontext "nearby/internal/delivery/context"
	"nearby/internal/domain/entity"
	domainerrors "nearby/internal/domain/errors"
	"nearby/internal/domain/repository"
	"nearby/internal/domain/service"
	"nearby/internal/errors"
	"nearby/internal/usecase"
)

const (
	inboxKeyPrefix   = "share_inbox/"
	inboxContentType = "application/json"
)

type shareInboxService struct {
	store     repository.KeyValueStore
	presenter service.FallbackPresenter
	logger    *slog.Logger
	now       func() time.Time
}

// NewShareInboxService creates the receiving side of native shares
func NewShareInboxService(
	store repository.KeyValueStore,
	presenter service.FallbackPresenter,
	logger *slog.Logger,
) usecase.ShareInboxUsecase {
	return &shareInboxService{
		store:     store,
		presenter: presenter,
		logger:    logger,
		now:       time.Now,
	}
}

func inboxKey(messageID string) string {
	return inboxKeyPrefix + messageID + ".json"
}

func (s *shareInboxService) Receive(ctx context.Context, messageID string, payload *service.SharePayload) (*usecase.InboxEntry, error) {
	logger := deliverycontext.GetLoggerOrDefault(ctx, s.logger)

	if err := validateInboxPayload(messageID, payload); err != nil {
		return nil, err
	}

	existing, err := s.lookup(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Info("Share message already received", slog.String("message_id", messageID))

		return existing, nil
	}

	link, err := s.presenter.Present(ctx, inboxPage(payload), "")
	if err != nil {
		return nil, err
	}

	entry := &usecase.InboxEntry{
		MessageID:  messageID,
		RequestID:  payload.RequestID,
		SessionID:  payload.SessionID,
		PlaceID:    payload.PlaceID,
		Title:      payload.Title,
		Text:       payload.Text,
		FileCount:  len(payload.Files),
		Link:       link,
		ReceivedAt: s.now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := s.store.Put(ctx, inboxKey(messageID), data, inboxContentType); err != nil {
		return nil, domainerrors.NewStorageError(err, "failed to record share message")
	}

	logger.Info("Share message received",
		slog.String("message_id", messageID),
		slog.String("session_id", payload.SessionID),
		slog.String("place_id", payload.PlaceID),
		slog.Int("files", len(payload.Files)),
	)

	return entry, nil
}

func (s *shareInboxService) lookup(ctx context.Context, messageID string) (*usecase.InboxEntry, error) {
	data, err := s.store.Get(ctx, inboxKey(messageID))
	if errors.Is(err, repository.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domainerrors.NewStorageError(err, "failed to read share inbox")
	}

	var entry usecase.InboxEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt record is replaced by a fresh delivery.
		return nil, nil //nolint:nilerr
	}

	return &entry, nil
}

func validateInboxPayload(messageID string, payload *service.SharePayload) error {
	switch {
	case messageID == "":
		return domainerrors.ErrValidationFailed.WithDetails("message id is required")
	case payload == nil:
		return domainerrors.ErrValidationFailed.WithDetails("payload is required")
	case payload.SessionID == "":
		return domainerrors.ErrValidationFailed.WithDetails("session_id is required")
	case payload.Title == "":
		return domainerrors.ErrValidationFailed.WithDetails("title is required")
	case len(payload.Files) == 0:
		return domainerrors.ErrValidationFailed.WithDetails("at least one file is required")
	}

	for _, f := range payload.Files {
		if len(f.Data) == 0 {
			return domainerrors.ErrValidationFailed.WithDetails("file " + f.Name + " is empty")
		}
	}

	return nil
}

func inboxPage(payload *service.SharePayload) *service.FallbackPage {
	page := &service.FallbackPage{
		Title:  payload.Title,
		Text:   payload.Text,
		Photos: make([]service.FallbackPhoto, 0, len(payload.Files)),
	}

	for _, f := range payload.Files {
		mimeType := f.MIMEType
		if mimeType == "" {
			mimeType = mimetype.Detect(f.Data).String()
		}
		page.Photos = append(page.Photos, service.FallbackPhoto{
			FileName: f.Name,
			MIMEType: mimeType,
			Size:     len(f.Data),
			DataURL:  entity.EncodeDataURL(mimeType, f.Data),
		})
	}

	return page
}
