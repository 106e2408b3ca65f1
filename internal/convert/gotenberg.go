package convert

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/starwalkn/gotenberg-go-client/v8"
	"github.com/starwalkn/gotenberg-go-client/v8/document"

	"github.com/Adarsh-MG101/VerifyCert2/internal/logger"
)

// GotenbergConverter converts DOCX files through a Gotenberg instance's
// LibreOffice route.
type GotenbergConverter struct {
	client  *gotenberg.Client
	timeout time.Duration
}

// NewGotenbergConverter dials the Gotenberg service at url.
func NewGotenbergConverter(url string, timeout time.Duration) (*GotenbergConverter, error) {
	client, err := gotenberg.NewClient(url, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("create gotenberg client: %w", err)
	}
	return &GotenbergConverter{client: client, timeout: timeout}, nil
}

// Convert renders docxPath to a PDF with the same base name. The converter's
// status alone is not trusted: the output file must exist and be non-empty.
func (c *GotenbergConverter) Convert(ctx context.Context, docxPath string) (string, error) {
	pdfPath := pdfPathFor(docxPath)

	doc, err := document.FromPath(filepath.Base(docxPath), docxPath)
	if err != nil {
		return "", fmt.Errorf("read docx for conversion: %w", err)
	}

	convertCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := gotenberg.NewLibreOfficeRequest(doc)
	if err := c.client.Store(convertCtx, req, pdfPath); err != nil {
		logger.WithFields(map[string]interface{}{"file": docxPath}).
			WithError(err).Error("gotenberg conversion failed")
		return "", fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}

	fi, err := os.Stat(pdfPath)
	if err != nil || fi.Size() == 0 {
		return "", fmt.Errorf("%w: converted file was not created", ErrConversionFailed)
	}
	return pdfPath, nil
}
