package entity

import (
	"encoding/base64"
	"strings"

	"nearby/internal/errors"
)

// ErrInvalidDataURL is returned when an encoded image is not a base64 data URL.
var ErrInvalidDataURL = errors.New("invalid data URL")

// StoredPhoto is one image attached to a place. ID is the creation
// timestamp in milliseconds. Photos are never mutated after creation.
type StoredPhoto struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	EncodedImage string `json:"dataUrl"`
}

// PhotoIndex maps a place ID to its photos in attachment order. It is the
// whole persisted state; keys may refer to places no longer in any result set.
type PhotoIndex map[string][]StoredPhoto

// EncodeDataURL renders data as a self-describing data URL.
func EncodeDataURL(mimeType string, data []byte) string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mimeType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mimeType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))

	return b.String()
}

// DecodeDataURL splits a base64 data URL into its MIME type and payload.
func DecodeDataURL(dataURL string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}

	mimeType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, errors.Wrap(ErrInvalidDataURL, "payload is not base64")
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Wrap(ErrInvalidDataURL, err.Error())
	}

	if mimeType == "" {
		mimeType = "text/plain;charset=US-ASCII"
	}

	return mimeType, data, nil
}

// Decode returns the MIME type and binary content of the photo.
func (p StoredPhoto) Decode() (mimeType string, data []byte, err error) {
	return DecodeDataURL(p.EncodedImage)
}
