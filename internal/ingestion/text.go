// Package ingestion turns a job description source (a text or PDF file,
// standard input or a URL) into cleaned text ready for the job analyzer.
package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrEmptyDescription is returned when a source yields no text after cleaning
var ErrEmptyDescription = errors.New("job description is empty")

var (
	spaceRun   = regexp.MustCompile(`[ \t\f\v]+`)
	blankLines = regexp.MustCompile(`\n\n\n+`)
)

// Document is an ingested job description
type Document struct {
	Text     string
	Metadata *Metadata
}

// CleanText normalizes line endings and whitespace while keeping markdown
// headings, bullets and paragraph breaks.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine keeps a line's indentation and collapses the spaces inside it.
// Headings lose their indentation.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := len(line) - len(trimmed)
	content := spaceRun.ReplaceAllString(trimmed, " ")
	return strings.Repeat(" ", indent) + content
}

// IngestFromFile reads a job description file. Files ending in .pdf have their
// text layer extracted, anything else is read as text.
func IngestFromFile(path string) (*Document, error) {
	var (
		raw    string
		source = SourceFile
		err    error
	)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		source = SourcePDF
		raw, err = ExtractPDFText(path)
	} else {
		var content []byte
		content, err = os.ReadFile(path)
		raw = string(content)
	}
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return newDocument(raw, source, path)
}

// IngestFromReader reads a job description from r, typically standard input.
func IngestFromReader(r io.Reader) (*Document, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return newDocument(string(content), SourceStdin, "")
}

// IngestText wraps text that is already in memory.
func IngestText(text string) (*Document, error) {
	return newDocument(text, SourceText, "")
}

func newDocument(raw string, source Source, location string) (*Document, error) {
	text := CleanText(raw)
	if text == "" {
		return nil, ErrEmptyDescription
	}
	return &Document{Text: text, Metadata: NewMetadata(text, source, location)}, nil
}

// ExtractPDFText returns the plain text of every page in a PDF.
func ExtractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}
	return buf.String(), nil
}
