// Package qr renders payment links as PNG QR codes.
package qr

import (
	"errors"

	"github.com/skip2/go-qrcode"
)

const DefaultSize = 256

var ErrEmptyContent = errors.New("empty qr content")

// PNG encodes content at size pixels with medium error recovery.
func PNG(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}
