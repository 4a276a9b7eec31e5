package driven

import (
	"context"

	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
)

// AnalysisStore persists completed analysis results so that follow-up chat
// requests can reference them by ID.
type AnalysisStore interface {
	// Save stores an analysis result.
	Save(ctx context.Context, result *domain.AnalysisResult) error

	// Get retrieves an analysis result by ID.
	// Returns domain.ErrNotFound when no result exists.
	Get(ctx context.Context, id string) (*domain.AnalysisResult, error)

	// List returns all stored results, newest first.
	List(ctx context.Context) ([]domain.AnalysisResult, error)

	// Delete removes a stored result. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error
}
