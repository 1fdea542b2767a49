package rendering

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/ledongthuc/pdf"

	"github.com/jonathan/resume-tailor/internal/types"
)

// DefaultPDFTimeout bounds a single Chrome print
const DefaultPDFTimeout = 60 * time.Second

// PDFOptions configures Chrome printing. Paper sizes are in inches.
type PDFOptions struct {
	PaperWidth  float64
	PaperHeight float64
	Timeout     time.Duration
	// ChromePath overrides the Chrome binary chromedp would find on PATH
	ChromePath string
	Logger     *slog.Logger
}

// DefaultPDFOptions prints US Letter
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{PaperWidth: 8.5, PaperHeight: 11, Timeout: DefaultPDFTimeout}
}

// Result lists the files written by Render
type Result struct {
	HTMLPath string
	PDFPath  string
	Pages    int
}

// RenderPDF prints an HTML document with headless Chrome. The HTML is written
// to a temporary file so relative assets resolve.
func RenderPDF(ctx context.Context, html string, opts PDFOptions) ([]byte, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultPDFTimeout
	}
	if opts.PaperWidth <= 0 || opts.PaperHeight <= 0 {
		defaults := DefaultPDFOptions()
		opts.PaperWidth, opts.PaperHeight = defaults.PaperWidth, defaults.PaperHeight
	}

	tmpDir, err := os.MkdirTemp("", "resume-render-")
	if err != nil {
		return nil, &RenderError{Message: "failed to create temp dir", Cause: err}
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, &RenderError{Message: "failed to write HTML", Cause: err}
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancel()
	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	browserCtx, cancel = context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	var buf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(opts.PaperWidth).
				WithPaperHeight(opts.PaperHeight).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &RenderError{Message: "chrome failed to print PDF", Cause: err}
	}
	return buf, nil
}

// CountPDFPages returns the number of pages in a PDF file
func CountPDFPages(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return r.NumPage(), nil
}

// CheckPageLimit returns a *PageLimitError when pages exceeds maxPages. A
// maxPages of zero means no limit.
func CheckPageLimit(pages, maxPages int) error {
	if maxPages > 0 && pages > maxPages {
		return &PageLimitError{Pages: pages, MaxPages: maxPages}
	}
	return nil
}

// Render writes resume.html and resume.pdf into dir and checks the page count
// against the workflow constraints. The files are kept when the page limit is
// exceeded so the caller can inspect them; the returned error says so.
func Render(ctx context.Context, draft *types.ResumeDraft, constraints types.Constraints, dir string, opts PDFOptions) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	html, err := RenderHTML(draft)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &RenderError{Message: "failed to create output dir", Cause: err}
	}

	res := &Result{
		HTMLPath: filepath.Join(dir, "resume.html"),
		PDFPath:  filepath.Join(dir, "resume.pdf"),
	}
	if err := os.WriteFile(res.HTMLPath, []byte(html), 0o644); err != nil {
		return nil, &RenderError{Message: "failed to write HTML", Cause: err}
	}

	data, err := RenderPDF(ctx, html, opts)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(res.PDFPath, data, 0o644); err != nil {
		return nil, &RenderError{Message: "failed to write PDF", Cause: err}
	}

	res.Pages, err = CountPDFPages(res.PDFPath)
	if err != nil {
		return nil, err
	}
	logger.Info("rendered resume", "pdf", res.PDFPath, "pages", res.Pages)
	return res, CheckPageLimit(res.Pages, constraints.MaxPages)
}
