package driven

import (
	"context"

	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
)

// TextExtractor assembles a Document from pre-extracted OCR text.
// OCR itself happens outside this system; the collaborator hands over raw
// text plus page metadata, and implementations of this port read it in.
type TextExtractor interface {
	// Extract reads the given text sources into a single Document.
	// The language tag is the OCR language the text was extracted with.
	Extract(ctx context.Context, paths []string, language string) (*domain.Document, error)
}
