package printing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second

	// A4 in inches with 12mm margins
	a4Width  = 8.27
	a4Height = 11.69
	a4Margin = 0.47
)

// ChromedpConfig contains configuration for the chromedp renderer
type ChromedpConfig struct {
	DefaultTimeout time.Duration
	// ExecPath overrides the Chrome binary lookup
	ExecPath string
	// RemoteURL is a DevTools websocket of an already running Chrome.
	// When set no local browser is launched.
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	Currency  string
	Locale    string
	Logger    *zap.Logger
}

// ChromedpRenderer renders invoices to PDF using Chrome DevTools Protocol
type ChromedpRenderer struct {
	config      *ChromedpConfig
	template    *InvoiceTemplate
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates a new chromedp-based invoice renderer.
// The browser itself starts lazily on the first render.
func NewChromedpRenderer(config *ChromedpConfig) (*ChromedpRenderer, error) {
	if config == nil {
		config = &ChromedpConfig{}
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultChromeTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tmpl, err := NewInvoiceTemplate(config.Currency, config.Locale)
	if err != nil {
		return nil, err
	}

	r := &ChromedpRenderer{
		config:   config,
		template: tmpl,
		logger:   logger.Named("invoice_renderer"),
	}
	r.initAllocator()
	return r, nil
}

func (r *ChromedpRenderer) initAllocator() {
	if r.config.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
		return
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.config.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if r.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.config.ExecPath))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// RenderInvoice renders one invoice document to an A4 PDF
func (r *ChromedpRenderer) RenderInvoice(ctx context.Context, doc invoicing.Document) ([]byte, error) {
	html, err := r.template.Render(doc)
	if err != nil {
		return nil, err
	}
	return r.render(ctx, doc.InvoiceNumber, html)
}

func (r *ChromedpRenderer) render(ctx context.Context, name, html string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, renderErr(ErrInvalidHTML, "HTML content is empty", nil)
	}
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.config.DefaultTimeout)
	defer cancel()

	// Tie the browser tab to the request context
	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	var pdfData []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				WithMarginTop(a4Margin).
				WithMarginRight(a4Margin).
				WithMarginBottom(a4Margin).
				WithMarginLeft(a4Margin).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, renderErr(ErrRenderTimeout,
				fmt.Sprintf("PDF rendering timed out after %v", r.config.DefaultTimeout), err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, renderErr(ErrRenderTimeout, "PDF rendering was cancelled", err)
		}
		r.logger.Error("chromedp rendering failed", zap.String("invoice", name), zap.Error(err))
		return nil, renderErr(ErrRenderFailed, "chromedp execution failed", err)
	}
	if len(pdfData) == 0 {
		return nil, renderErr(ErrRenderFailed, "generated PDF is empty", nil)
	}

	r.logger.Info("invoice PDF rendered",
		zap.String("invoice", name),
		zap.Int("bytes", len(pdfData)),
		zap.Duration("duration", time.Since(startTime)))
	return pdfData, nil
}

// Close shuts down the browser allocator
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}
