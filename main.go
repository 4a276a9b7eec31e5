// raildocs analyses OCR-extracted railway documents: chunked
// summarisation, category classification, key information extraction,
// and chat over stored results.
package main

import (
	"fmt"
	"os"

	"github.com/raildocs-labs/raildocs-cli/internal/adapters/driven/config/file"
	"github.com/raildocs-labs/raildocs-cli/internal/adapters/driven/llm/ollama"
	"github.com/raildocs-labs/raildocs-cli/internal/adapters/driven/llm/openai"
	"github.com/raildocs-labs/raildocs-cli/internal/adapters/driven/llm/paced"
	"github.com/raildocs-labs/raildocs-cli/internal/adapters/driven/llm/pacing"
	"github.com/raildocs-labs/raildocs-cli/internal/adapters/driven/ocrtext"
	"github.com/raildocs-labs/raildocs-cli/internal/adapters/driven/storage/memory"
	"github.com/raildocs-labs/raildocs-cli/internal/adapters/driven/storage/sqlite"
	"github.com/raildocs-labs/raildocs-cli/internal/adapters/driving/cli"
	"github.com/raildocs-labs/raildocs-cli/internal/chunker"
	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driven"
	"github.com/raildocs-labs/raildocs-cli/internal/core/services"
	"github.com/raildocs-labs/raildocs-cli/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		logger.Warn("Config unavailable: %v (using defaults)", err)
	}
	var cfg driven.ConfigStore
	if configStore != nil {
		cfg = configStore
	}
	settings := file.ResolveSettings(cfg)

	llm, modelName := buildLLM(settings)

	store := buildStore(settings)

	analysis := services.NewAnalysisService(
		chunker.New(chunker.WithMaxTokens(settings.MaxChunkTokens)),
		llm,
		services.NewClassifier(),
		store,
	)
	chat := services.NewChatService(llm)

	if promptStore, err := file.NewPromptStore(""); err == nil {
		analysis.SetPromptStore(promptStore)
		chat.SetPromptStore(promptStore)
	} else {
		logger.Warn("Prompt store unavailable: %v (using built-in prompts)", err)
	}

	cli.SetServices(cli.Services{
		Analysis:  analysis,
		Chat:      chat,
		Store:     store,
		Extractor: ocrtext.NewReader(),
		ModelName: modelName,
	})

	return cli.Execute()
}

// buildLLM assembles the paced model client for the configured provider.
// A nil return routes the whole pipeline to deterministic fallback mode.
func buildLLM(settings file.Settings) (driven.LLMService, string) {
	var inner driven.LLMService
	var modelName string

	switch settings.Provider {
	case "openai", "":
		svc, err := openai.NewLLMService(openai.LLMConfig{
			APIKey:  settings.Token,
			BaseURL: settings.Endpoint,
			Model:   settings.Model,
		})
		if err != nil {
			logger.Warn("Model unavailable: %v (running in fallback mode)", err)
			return nil, ""
		}
		inner = svc
		modelName = settings.Model
		if modelName == "" {
			modelName = openai.DefaultLLMModel
		}

	case "ollama":
		inner = ollama.NewLLMService(ollama.LLMConfig{
			BaseURL: settings.Endpoint,
			Model:   settings.Model,
		})
		modelName = settings.Model
		if modelName == "" {
			modelName = ollama.DefaultLLMModel
		}

	case "none":
		return nil, ""

	default:
		logger.Warn("Unknown LLM provider %q (running in fallback mode)", settings.Provider)
		return nil, ""
	}

	gate := pacing.NewGate(pacing.Config{MinInterval: settings.ChunkDelay})
	return paced.Wrap(inner, gate, paced.Config{
		RetryDelay:  settings.RetryDelay,
		MaxAttempts: settings.MaxAttempts,
	}), modelName
}

// buildStore opens the sqlite result store, degrading to the in-memory
// store when the database cannot be opened.
func buildStore(settings file.Settings) driven.AnalysisStore {
	store, err := sqlite.NewStore(settings.DBPath)
	if err != nil {
		logger.Warn("Result database unavailable: %v (results will not persist)", err)
		return memory.NewAnalysisStore()
	}
	return store
}
