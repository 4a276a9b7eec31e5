package cli

import (
	"context"

	"github.com/raildocs-labs/raildocs-cli/internal/adapters/driven/ocrtext"
	"github.com/raildocs-labs/raildocs-cli/internal/adapters/driven/storage/memory"
	"github.com/raildocs-labs/raildocs-cli/internal/chunker"
	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
	"github.com/raildocs-labs/raildocs-cli/internal/core/services"
)

// setupTestServices wires a fallback-only pipeline (no LLM) against an
// in-memory store and returns a cleanup that restores the previous wiring.
func setupTestServices(seed ...*domain.AnalysisResult) func() {
	prev := Services{
		Analysis:  analysisService,
		Chat:      chatService,
		Store:     resultStore,
		Extractor: textExtractor,
		ModelName: modelName,
	}

	store := memory.NewAnalysisStore()
	for _, r := range seed {
		_ = store.Save(context.Background(), r)
	}

	SetServices(Services{
		Analysis:  services.NewAnalysisService(chunker.New(), nil, services.NewClassifier(), store),
		Chat:      services.NewChatService(nil),
		Store:     store,
		Extractor: ocrtext.NewReader(),
	})

	return func() {
		SetServices(prev)
	}
}
