package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jonathan/resume-tailor/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the page could not be fetched
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when the page HTML could not be parsed
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// URLOptions configures IngestFromURL
type URLOptions struct {
	Fetch *fetch.Options
	// UseBrowser re-renders pages whose extracted text is suspiciously short
	UseBrowser     bool
	BrowserTimeout time.Duration
	Logger         *slog.Logger
}

// IngestFromURL fetches a job posting and extracts its main text using
// selectors for the detected job board.
func IngestFromURL(ctx context.Context, urlStr string, opts URLOptions) (*Document, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	platform := fetch.DetectPlatform(urlStr)
	logger.Debug("fetching job posting", "url", urlStr, "platform", platform)

	page, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	text, err := fetch.ExtractMainText(page.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	if opts.UseBrowser && fetch.ShouldUseBrowser(text) {
		logger.Info("posting text is short, rendering in browser", "chars", len(text))
		html, err := fetch.Render(ctx, urlStr, opts.BrowserTimeout, logger)
		if err != nil {
			logger.Warn("browser rendering failed, keeping fetched text", "error", err)
		} else if rendered, err := fetch.ExtractMainText(html, contentSelectors, noiseSelectors...); err == nil {
			text = rendered
		}
	}

	doc, err := newDocument(text, SourceURL, urlStr)
	if err != nil {
		return nil, err
	}
	doc.Metadata.Platform = string(platform)
	logger.Debug("ingested job posting", "url", urlStr, "chars", len(doc.Text))
	return doc, nil
}

// Ingest reads a job description from source: "-" is standard input, an
// http(s) URL is fetched and anything else is a file path.
func Ingest(ctx context.Context, source string, opts URLOptions) (*Document, error) {
	switch {
	case source == "-":
		return IngestFromReader(os.Stdin)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return IngestFromURL(ctx, source, opts)
	default:
		return IngestFromFile(source)
	}
}
