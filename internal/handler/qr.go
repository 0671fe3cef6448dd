package handler

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// addressQR renders addr as a base64 PNG QR code.
func addressQR(addr string) (string, error) {
	qr, err := qrcode.New(addr, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(qrSize)
	if err != nil {
		return "", fmt.Errorf("failed to render QR code: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
