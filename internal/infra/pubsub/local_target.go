package pubsub

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"nearby/internal/domain/service"
	"nearby/internal/errors"

	"github.com/google/uuid"
)

// PushMessage mimics the body Google Pub/Sub posts to push endpoints
type PushMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// localShareTarget posts share payloads to a local endpoint, for development
type localShareTarget struct {
	endpoint        string
	httpClient      *http.Client
	maxPayloadBytes int
	logger          *slog.Logger
}

// NewLocalShareTarget creates a share target posting push messages to endpoint
func NewLocalShareTarget(endpoint string, maxPayloadBytes int, httpClient *http.Client, logger *slog.Logger) service.ShareTarget {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &localShareTarget{
		endpoint:        endpoint,
		httpClient:      httpClient,
		maxPayloadBytes: maxPayloadBytes,
		logger:          logger,
	}
}

func (t *localShareTarget) CanShare(payload *service.SharePayload) bool {
	return fitsMessage(payload, t.maxPayloadBytes)
}

func (t *localShareTarget) Share(ctx context.Context, payload *service.SharePayload) error {
	data, attributes, err := encodePayload(payload)
	if err != nil {
		return err
	}

	push := PushMessage{Subscription: "projects/local/subscriptions/share-sub"}
	push.Message.Data = base64.StdEncoding.EncodeToString(data)
	push.Message.Attributes = attributes
	push.Message.MessageID = uuid.NewString()
	push.Message.PublishTime = time.Now().UTC().Format(time.RFC3339)

	body, err := json.Marshal(push)
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if payload.RequestID != "" {
		req.Header.Set("X-Request-Id", payload.RequestID)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("share endpoint returned non-success status: %d", resp.StatusCode)
	}

	t.logger.Info("[LocalPubSub] Share delivered",
		slog.String("endpoint", t.endpoint),
		slog.String("place_id", payload.PlaceID),
		slog.Int("files", len(payload.Files)),
	)

	return nil
}

func (t *localShareTarget) Close() error {
	t.httpClient.CloseIdleConnections()

	return nil
}
