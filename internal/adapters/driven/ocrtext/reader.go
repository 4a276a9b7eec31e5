// Package ocrtext reads pre-extracted OCR text from disk into a Document.
// OCR runs outside this system; its output arrives as plain text files,
// one per scanned source, with form feeds separating pages.
package ocrtext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driven"
	"github.com/raildocs-labs/raildocs-cli/internal/logger"
)

// Ensure Reader implements the interface.
var _ driven.TextExtractor = (*Reader)(nil)

// Reader is a file-based implementation of driven.TextExtractor.
type Reader struct{}

// NewReader creates a new OCR text reader.
func NewReader() *Reader {
	return &Reader{}
}

// Extract reads the given text files into a single Document. Files are
// concatenated in argument order with blank lines between them; pages are
// counted from form feed markers, one page minimum per file.
func (r *Reader) Extract(ctx context.Context, paths []string, language string) (*domain.Document, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no input files", domain.ErrInvalidInput)
	}

	var parts []string
	var names []string
	pages := 0

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		text := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
		pages += strings.Count(text, "\f") + 1
		text = strings.ReplaceAll(text, "\f", "\n\n")

		parts = append(parts, text)
		names = append(names, filepath.Base(path))
		logger.Debug("Read %s: %d characters", path, len([]rune(text)))
	}

	return &domain.Document{
		ID:        uuid.NewString(),
		Source:    strings.Join(names, ", "),
		Text:      strings.Join(parts, "\n\n"),
		Languages: splitLanguages(language),
		Pages:     pages,
	}, nil
}

// splitLanguages turns a tesseract-style tag like "eng+mal" into a list.
func splitLanguages(language string) []string {
	if language == "" {
		return nil
	}
	var out []string
	for _, l := range strings.Split(language, "+") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
