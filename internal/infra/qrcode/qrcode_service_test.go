package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want qrcode.RecoveryLevel
	}{
		{"L", qrcode.Low},
		{"m", qrcode.Medium},
		{" Q ", qrcode.High},
		{"H", qrcode.Highest},
		{"", qrcode.Medium},
		{"invalid", qrcode.Medium},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestClampSize(t *testing.T) {
	assert.Equal(t, defaultSize, clampSize(0))
	assert.Equal(t, defaultSize, clampSize(-5))
	assert.Equal(t, minSize, clampSize(10))
	assert.Equal(t, 300, clampSize(300))
	assert.Equal(t, maxSize, clampSize(5000))
}

func TestGenerateLinkQR(t *testing.T) {
	svc := NewQRCodeService(256, "M")

	qrBytes, err := svc.GenerateLinkQR("https://nearby.example.com/shares/eyJhbGciOiJIUzI1NiJ9.e30.sig")
	require.NoError(t, err)
	require.NotEmpty(t, qrBytes)

	// PNG magic number
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, qrBytes[:4])
}

func TestGenerateLinkQR_Sizes(t *testing.T) {
	for _, size := range []int{128, 256, 512} {
		svc := NewQRCodeService(size, "H")

		qrBytes, err := svc.GenerateLinkQR("http://localhost:8080/shares/token")
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(qrBytes))
		require.NoError(t, err)
		assert.Equal(t, size, img.Bounds().Dx())
	}
}

func TestGenerateLinkQR_InvalidLinks(t *testing.T) {
	svc := NewQRCodeService(256, "M")

	for _, link := range []string{"", "/shares/token", "ftp://example.com/x", "https://"} {
		t.Run(link, func(t *testing.T) {
			_, err := svc.GenerateLinkQR(link)
			assert.Error(t, err)
		})
	}
}
