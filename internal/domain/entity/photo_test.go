package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataURL_RoundTrip(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff, 0x10}

	encoded := EncodeDataURL("image/png", payload)
	assert.Equal(t, "data:image/png;base64,iVBORwD/EA==", encoded)

	mimeType, data, err := DecodeDataURL(encoded)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, payload, data)
}

func TestDecodeDataURL_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "missing scheme", input: "image/png;base64,AAAA"},
		{name: "missing comma", input: "data:image/png;base64"},
		{name: "not base64 flagged", input: "data:image/png,AAAA"},
		{name: "corrupt payload", input: "data:image/png;base64,@@@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeDataURL(tt.input)
			assert.ErrorIs(t, err, ErrInvalidDataURL)
		})
	}
}

func TestCoordinate_Valid(t *testing.T) {
	assert.True(t, NewCoordinate(90, 180).Valid())
	assert.True(t, NewCoordinate(-90, -180).Valid())
	assert.False(t, NewCoordinate(90.1, 0).Valid())
	assert.False(t, NewCoordinate(0, -180.5).Valid())
}

func TestCoordinate_PointOrder(t *testing.T) {
	c := NewCoordinate(25.03, 121.56)
	p := c.Point()

	assert.Equal(t, 121.56, p.Lon())
	assert.Equal(t, 25.03, p.Lat())
	assert.Equal(t, c, CoordinateFromPoint(p))
}
