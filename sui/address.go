package sui

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// AddressQR renders address as a QR code made of terminal block characters.
func AddressQR(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}
	return qr.ToSmallString(false), nil
}
