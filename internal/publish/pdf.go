package publish

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

type PageSize string

const (
	PageA4     PageSize = "A4"
	PageLetter PageSize = "Letter"
	PageLegal  PageSize = "Legal"
)

// ParsePageSize accepts A4, Letter and Legal in any case.
func ParsePageSize(s string) (PageSize, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "a4":
		return PageA4, nil
	case "letter":
		return PageLetter, nil
	case "legal":
		return PageLegal, nil
	default:
		return "", fmt.Errorf("unknown page size %q (want A4, Letter or Legal)", s)
	}
}

// inches returns the portrait paper width and height.
func (p PageSize) inches() (float64, float64) {
	switch p {
	case PageLetter:
		return 8.5, 11
	case PageLegal:
		return 8.5, 14
	default:
		return 8.27, 11.69
	}
}

type PDFOptions struct {
	PageSize  PageSize
	Landscape bool
	// Bookmarks asks the printer for a document outline built from the h1/h2 structure.
	Bookmarks bool
	// Timeout bounds the whole browser session. Zero means one minute.
	Timeout time.Duration
	// ExecPath points at a Chrome/Chromium binary; empty lets chromedp search PATH.
	ExecPath string
}

// PDFRenderer turns a standalone HTML page into PDF bytes.
type PDFRenderer func(ctx context.Context, htmlDoc string, opt PDFOptions) ([]byte, error)

// ChromePDF prints htmlDoc with a headless Chrome.
func ChromePDF(ctx context.Context, htmlDoc string, opt PDFOptions) ([]byte, error) {
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if opt.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(opt.ExecPath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	w, h := opt.PageSize.inches()
	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, htmlDoc).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(w).
				WithPaperHeight(h).
				WithLandscape(opt.Landscape).
				WithGenerateTaggedPDF(opt.Bookmarks).
				WithGenerateDocumentOutline(opt.Bookmarks).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return pdf, nil
}
