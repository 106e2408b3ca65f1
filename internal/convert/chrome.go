package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

const (
	thumbWidth  = 1280
	thumbHeight = 905
	thumbScale  = 2.0
	// the built-in viewer needs a beat to centre and scale the page
	defaultStabilizeDelay = 1500 * time.Millisecond
	// fragment that hides the viewer chrome around the page
	viewerFragment = "#toolbar=0&navpanes=0&scrollbar=0&view=Fit"
)

// ChromeThumbnailer screenshots PDFs through headless Chrome's built-in
// viewer.
type ChromeThumbnailer struct {
	// ExecPath overrides browser discovery when set.
	ExecPath string
	// Delay overrides the viewer stabilization wait. Zero means default.
	Delay time.Duration
}

// Thumbnail opens pdfPath in the viewer and writes a PNG screenshot of the
// first page to pngPath. The background is overridden to transparent so the
// capture holds only the page itself.
func (t *ChromeThumbnailer) Thumbnail(ctx context.Context, pdfPath, pngPath string) error {
	abs, err := filepath.Abs(pdfPath)
	if err != nil {
		return fmt.Errorf("resolve pdf path: %w", err)
	}
	url := "file://" + filepath.ToSlash(abs) + viewerFragment

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("hide-scrollbars", true),
	)
	if t.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(t.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	delay := t.Delay
	if delay == 0 {
		delay = defaultStabilizeDelay
	}

	var shot []byte
	err = chromedp.Run(tabCtx,
		chromedp.EmulateViewport(thumbWidth, thumbHeight, chromedp.EmulateScale(thumbScale)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetDefaultBackgroundColorOverride().
				WithColor(&cdp.RGBA{R: 0, G: 0, B: 0, A: 0}).Do(ctx)
		}),
		chromedp.Navigate(url),
		chromedp.Sleep(delay),
		chromedp.CaptureScreenshot(&shot),
	)
	if err != nil {
		return fmt.Errorf("render pdf thumbnail: %w", err)
	}

	if err := os.WriteFile(pngPath, shot, 0o644); err != nil {
		return fmt.Errorf("write thumbnail: %w", err)
	}
	return nil
}
