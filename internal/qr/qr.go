// Package qr renders verification QR codes for embedding into certificates.
package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/Adarsh-MG101/VerifyCert2/internal/docx"
)

const (
	pngSize = 256
	// stamped size in centimetres
	stampCM = 4
)

// Generate encodes the verification URL as a PNG QR code sized for stamping
// into a document.
func Generate(url string) (*docx.ImageRef, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, pngSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return &docx.ImageRef{
		Width:     stampCM,
		Height:    stampCM,
		Data:      png,
		Extension: ".png",
	}, nil
}

// VerificationURL builds the public verify link encoded into each QR code.
func VerificationURL(baseURL, uniqueID string) string {
	return fmt.Sprintf("%s/verify/%s", baseURL, uniqueID)
}
