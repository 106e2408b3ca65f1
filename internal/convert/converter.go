// Package convert turns rendered DOCX files into PDFs and preview images.
package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrConversionFailed indicates the converter did not produce the expected
// output file, regardless of what the invocation itself reported.
var ErrConversionFailed = errors.New("pdf conversion failed")

// Converter turns a DOCX on disk into a PDF next to it, returning the PDF
// path.
type Converter interface {
	Convert(ctx context.Context, docxPath string) (string, error)
}

// Thumbnailer renders the first page of a PDF to a PNG file.
type Thumbnailer interface {
	Thumbnail(ctx context.Context, pdfPath, pngPath string) error
}

// pdfPathFor derives the output path a conversion of docxPath produces.
func pdfPathFor(docxPath string) string {
	return strings.TrimSuffix(docxPath, filepath.Ext(docxPath)) + ".pdf"
}

// Pipeline chains conversion and screenshotting for template previews.
type Pipeline struct {
	Converter   Converter
	Thumbnailer Thumbnailer
}

// RenderThumbnail converts docxPath to a PDF and captures a PNG of its first
// page. The intermediate PDF is removed on every path.
func (p *Pipeline) RenderThumbnail(ctx context.Context, docxPath, pngPath string) error {
	defer os.Remove(pdfPathFor(docxPath))

	pdfPath, err := p.Converter.Convert(ctx, docxPath)
	if err != nil {
		return err
	}
	return p.Thumbnailer.Thumbnail(ctx, pdfPath, pngPath)
}
