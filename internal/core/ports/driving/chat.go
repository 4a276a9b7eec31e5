package driving

import (
	"context"

	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
)

// ChatService answers questions about an analysis result.
type ChatService interface {
	// Respond builds bounded conversational context from the result and
	// history, asks the model, and returns the response text. When the
	// model is unavailable or fails, the deterministic responder answers
	// instead - the returned text is always non-empty.
	//
	// result may be nil: the response is then generic guidance.
	Respond(ctx context.Context, message string, result *domain.AnalysisResult, history []domain.ChatTurn) (string, error)
}
