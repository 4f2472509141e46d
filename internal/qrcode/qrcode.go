// Package qrcode encodes node links as QR images and finds them again in
// image files or on screen.
package qrcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/makiuchi-d/gozxing"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"
	qr "github.com/skip2/go-qrcode"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultSize is the edge length in pixels of encoded images.
const DefaultSize = 320

// ErrNoCode is returned when an image holds no readable QR code.
var ErrNoCode = errors.New("no QR code found")

// Encode renders text as a PNG QR code.
func Encode(text string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qr.Encode(text, qr.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("Encode: %w", err)
	}
	return png, nil
}

// EncodeImage renders text as an in-memory image for display widgets.
func EncodeImage(text string, size int) (image.Image, error) {
	if size <= 0 {
		size = DefaultSize
	}
	code, err := qr.New(text, qr.Medium)
	if err != nil {
		return nil, fmt.Errorf("EncodeImage: %w", err)
	}
	return code.Image(size), nil
}

// Decode reads the first QR code in img.
func Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("Decode: %w", err)
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := zxingqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("Decode: %w: %v", ErrNoCode, err)
	}
	return result.GetText(), nil
}

// DecodeBytes decodes an encoded image (png, jpeg, gif, bmp, webp).
func DecodeBytes(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("DecodeBytes: not an image: %w", err)
	}
	return Decode(img)
}

// DecodeFile decodes the QR code in an image file.
func DecodeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("DecodeFile: %w", err)
	}
	return DecodeBytes(data)
}
