// Package qrcode renders share links as PNG QR codes.
package qrcode

import (
	"net/url"
	"strings"

	"nearby/internal/domain/service"
	"nearby/internal/errors"

	"github.com/skip2/go-qrcode"
)

const (
	defaultSize = 256
	minSize     = 64
	maxSize     = 1024
)

var recoveryLevels = map[string]qrcode.RecoveryLevel{
	"L": qrcode.Low,
	"M": qrcode.Medium,
	"Q": qrcode.High,
	"H": qrcode.Highest,
}

type linkEncoder struct {
	size  int
	level qrcode.RecoveryLevel
}

// NewQRCodeService returns a QRCodeService producing size x size images.
// Unknown correction levels fall back to "M"; sizes are clamped to [64, 1024].
func NewQRCodeService(size int, errorCorrectionLevel string) service.QRCodeService {
	return &linkEncoder{
		size:  clampSize(size),
		level: parseLevel(errorCorrectionLevel),
	}
}

func parseLevel(level string) qrcode.RecoveryLevel {
	if l, ok := recoveryLevels[strings.ToUpper(strings.TrimSpace(level))]; ok {
		return l
	}

	return qrcode.Medium
}

func clampSize(size int) int {
	switch {
	case size <= 0:
		return defaultSize
	case size < minSize:
		return minSize
	case size > maxSize:
		return maxSize
	default:
		return size
	}
}

// GenerateLinkQR encodes an absolute http(s) link. Relative share links are
// rejected since a scanned code has no page to resolve them against.
func (s *linkEncoder) GenerateLinkQR(link string) ([]byte, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return nil, errors.Wrap(err, "parse link")
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, errors.Errorf("not an absolute http link: %q", link)
	}

	code, err := qrcode.New(parsed.String(), s.level)
	if err != nil {
		return nil, errors.Wrap(err, "encode link")
	}

	img, err := code.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "render png")
	}

	return img, nil
}
