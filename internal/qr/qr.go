package qr

import (
	qrcode "github.com/skip2/go-qrcode"
)

const defaultSize = 256

// Render encodes content as a QR code PNG at the default size
func Render(content string) ([]byte, error) {
	return RenderSized(content, defaultSize)
}

// RenderSized encodes content as a QR code PNG, size pixels square
func RenderSized(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}
