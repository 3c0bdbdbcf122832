package label

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

// QR image size bounds, in pixels
const (
	DefaultQRSize = 256
	MinQRSize     = 64
	MaxQRSize     = 1024
)

// AssetURL is the link a label's QR code points at.
func AssetURL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/assets/" + url.PathEscape(id)
}

// ClampSize maps a requested size into [MinQRSize, MaxQRSize]; 0 means default.
func ClampSize(size int) int {
	switch {
	case size == 0:
		return DefaultQRSize
	case size < MinQRSize:
		return MinQRSize
	case size > MaxQRSize:
		return MaxQRSize
	}
	return size
}

// QRCode encodes content as a square PNG.
func QRCode(content string, size int) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, ClampSize(size))
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
