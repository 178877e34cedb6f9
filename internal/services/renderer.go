package services

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"alfredoptarigan/resume-tailor/internal/logger"
)

// A4 with 20mm top/bottom and 12mm side margins, in inches.
const (
	a4WidthIn      = 8.27
	a4HeightIn     = 11.69
	marginVertIn   = 20.0 / 25.4
	marginHorizIn  = 12.0 / 25.4
	DefaultPDFName = "ats-resume.pdf"
)

type DocumentRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

type chromeRenderer struct {
	timeout  time.Duration
	execPath string
	log      *zap.Logger
}

// NewDocumentRenderer prints HTML to PDF in headless Chrome. execPath may be empty
// to let chromedp locate the browser.
func NewDocumentRenderer(timeout time.Duration, execPath string, log *zap.Logger) DocumentRenderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &chromeRenderer{
		timeout:  timeout,
		execPath: execPath,
		log:      logger.OrNop(log),
	}
}

func (r *chromeRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, r.timeout)
	defer cancel()

	doc := EnsureHTMLDocument(html)
	var pdf []byte

	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, doc).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4WidthIn).
				WithPaperHeight(a4HeightIn).
				WithMarginTop(marginVertIn).
				WithMarginBottom(marginVertIn).
				WithMarginLeft(marginHorizIn).
				WithMarginRight(marginHorizIn).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		r.log.Error("❌ PDF rendering failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}

	r.log.Debug("📄 PDF rendered", zap.Int("bytes", len(pdf)))

	return pdf, nil
}
