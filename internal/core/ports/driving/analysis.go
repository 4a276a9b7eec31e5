package driving

import (
	"context"

	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
)

// ProcessOptions carries request-level knobs for one processing run.
type ProcessOptions struct {
	// OCRLanguage is the language the text was extracted with (for metadata).
	OCRLanguage string

	// ClassificationMode selects the classification behaviour:
	// "railway" (default), "both", or "none".
	ClassificationMode string

	// FilesProcessed is the number of source files behind the document.
	FilesProcessed int
}

// AnalysisService runs the chunked analysis pipeline over one document.
type AnalysisService interface {
	// Process splits the document, drives the model over every chunk,
	// classifies the document and returns the aggregated result.
	//
	// Process always yields a result object for a non-empty document,
	// possibly degraded (partial or fallback mode); it never surfaces a
	// provider failure as a hard error. Cancellation returns whatever was
	// completed up to that point.
	Process(ctx context.Context, doc *domain.Document, opts ProcessOptions) (*domain.AnalysisResult, error)
}
