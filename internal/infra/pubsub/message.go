// Package pubsub implements the native share target by publishing share
// payloads to a Pub/Sub topic, or to a local HTTP endpoint that mimics
// Pub/Sub push delivery.
package pubsub

import (
	"encoding/json"

	"nearby/internal/domain/service"
	"nearby/internal/errors"
)

// encodePayload serializes a payload and its message attributes.
func encodePayload(payload *service.SharePayload) ([]byte, map[string]string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	attributes := map[string]string{
		"session_id": payload.SessionID,
		"place_id":   payload.PlaceID,
	}
	if payload.RequestID != "" {
		attributes["request_id"] = payload.RequestID
	}

	return data, attributes, nil
}

// fitsMessage reports whether the payload has files and its encoded form
// stays within maxBytes.
func fitsMessage(payload *service.SharePayload, maxBytes int) bool {
	if payload == nil || len(payload.Files) == 0 {
		return false
	}
	// cheap reject before marshaling
	if payload.Size() > maxBytes {
		return false
	}

	data, _, err := encodePayload(payload)
	if err != nil {
		return false
	}

	return len(data) <= maxBytes
}
