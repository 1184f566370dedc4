// Package render turns HTML pages into PDF documents with headless Chrome.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultTimeout bounds a single render including browser start
const DefaultTimeout = 60 * time.Second

// PDFRenderer renders an HTML document to PDF.
type PDFRenderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromedpRenderer starts a headless Chrome per render.
type ChromedpRenderer struct {
	logger     *slog.Logger
	chromePath string
	timeout    time.Duration
}

// NewChromedpRenderer creates a renderer. An empty chromePath lets chromedp
// find the browser on PATH.
func NewChromedpRenderer(logger *slog.Logger, chromePath string) *ChromedpRenderer {
	return &ChromedpRenderer{
		logger:     logger,
		chromePath: chromePath,
		timeout:    DefaultTimeout,
	}
}

// RenderHTMLToPDF loads html into a blank page and prints it on A4 paper
func (r *ChromedpRenderer) RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, r.timeout)
	defer cancel()

	start := time.Now()
	var pdf []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4: 210mm x 297mm
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to render pdf", slog.Any("error", err))
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	r.logger.DebugContext(ctx, "pdf rendered",
		slog.Int("bytes", len(pdf)),
		slog.Duration("duration", time.Since(start)),
	)
	return pdf, nil
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
