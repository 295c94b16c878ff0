package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A4 in inches, as Chrome expects.
const (
	a4Width  = 8.27
	a4Height = 11.69
	margin   = 0.4
)

// ChromeRenderer prints the HTML page through a remote headless Chrome.
type ChromeRenderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
}

// NewChromeRenderer connects lazily to the DevTools endpoint at url, e.g.
// ws://chrome:9222.
func NewChromeRenderer(url string, timeout time.Duration) *ChromeRenderer {
	allocCtx, cancel := chromedp.NewRemoteAllocator(context.Background(), url)

	return &ChromeRenderer{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		timeout:     timeout,
	}
}

func (r *ChromeRenderer) Render(ctx context.Context, doc *Document) ([]byte, error) {
	html, err := HTML(doc)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx)
	defer browserCancel()

	// Stop the tab when the request goes away.
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	var pdf []byte

	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}

			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				Do(ctx)
			if err != nil {
				return err
			}

			pdf = data

			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("rendering %s timed out after %v: %w", doc.Invoice.Number, r.timeout, err)
		}

		return nil, fmt.Errorf("rendering %s: %w", doc.Invoice.Number, err)
	}

	if len(pdf) == 0 {
		return nil, errors.New("chrome returned an empty pdf")
	}

	slog.Debug("invoice rendered", "number", doc.Invoice.Number, "bytes", len(pdf))

	return pdf, nil
}

func (r *ChromeRenderer) Close() error {
	r.allocCancel()
	return nil
}
