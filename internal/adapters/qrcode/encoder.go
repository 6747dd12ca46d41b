// Package qrcode renders check-in badges as PNG QR codes.
package qrcode

import (
	"fmt"

	qr "github.com/skip2/go-qrcode"

	"passin/internal/domain"
)

const defaultSize = 256

type pngEncoder struct {
	size  int
	level qr.RecoveryLevel
}

// NewEncoder returns a BadgeEncoder producing size x size PNG images with medium error recovery.
func NewEncoder(size int) domain.BadgeEncoder {
	if size <= 0 {
		size = defaultSize
	}
	return &pngEncoder{size: size, level: qr.Medium}
}

func (e *pngEncoder) Encode(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr content is empty")
	}
	png, err := qr.Encode(content, e.level, e.size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}
