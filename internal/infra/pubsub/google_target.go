package pubsub

import (
	"context"
	"fmt"
	"log/slog"

	"nearby/internal/domain/service"
	"nearby/internal/errors"

	"cloud.google.com/go/pubsub/v2"
	pubsubpb "cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
)

// googleShareTarget publishes share payloads to Google Cloud Pub/Sub
type googleShareTarget struct {
	client          *pubsub.Client
	publisher       *pubsub.Publisher
	maxPayloadBytes int
	logger          *slog.Logger
}

// NewGoogleShareTarget creates a share target on an existing topic
func NewGoogleShareTarget(ctx context.Context, projectID, topicID string, maxPayloadBytes int, logger *slog.Logger) (service.ShareTarget, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	topicPath := fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
	_, err = client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{
		Topic: topicPath,
	})
	if err != nil {
		client.Close()

		return nil, errors.Wrapf(err, "failed to get topic %s", topicID)
	}

	logger.Info("Google Pub/Sub share target initialized",
		slog.String("project_id", projectID),
		slog.String("topic_id", topicID),
	)

	return &googleShareTarget{
		client:          client,
		publisher:       client.Publisher(topicID),
		maxPayloadBytes: maxPayloadBytes,
		logger:          logger,
	}, nil
}

func (t *googleShareTarget) CanShare(payload *service.SharePayload) bool {
	return fitsMessage(payload, t.maxPayloadBytes)
}

// Share publishes the payload and waits for the server acknowledgement
func (t *googleShareTarget) Share(ctx context.Context, payload *service.SharePayload) error {
	data, attributes, err := encodePayload(payload)
	if err != nil {
		return err
	}

	result := t.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attributes,
	})

	serverID, err := result.Get(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	t.logger.Info("[GooglePubSub] Share published",
		slog.String("place_id", payload.PlaceID),
		slog.Int("files", len(payload.Files)),
		slog.String("server_id", serverID),
	)

	return nil
}

func (t *googleShareTarget) Close() error {
	if t.publisher != nil {
		t.publisher.Stop()
	}
	if t.client != nil {
		return errors.WithStack(t.client.Close())
	}

	return nil
}
