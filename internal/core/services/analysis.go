package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raildocs-labs/raildocs-cli/internal/chunker"
	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driven"
	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driving"
	"github.com/raildocs-labs/raildocs-cli/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// Generation budgets per call site.
const (
	chunkSummaryMaxTokens  = 1000
	singleSummaryMaxTokens = 2000
	synthesisMaxTokens     = 2000
	analysisTemperature    = 0.3
)

// defaultChunkSummaryPrompt is the fallback prompt when no PromptStore is configured.
const defaultChunkSummaryPrompt = `Document Section %d:
%s

Summarise this section of the document concisely while preserving key information.`

// defaultSingleSummaryPrompt is the fallback prompt when no PromptStore is configured.
const defaultSingleSummaryPrompt = `Document Content:
%s

Provide a comprehensive, structured summary of this document with key information extraction.`

// defaultSynthesisPrompt is the fallback prompt when no PromptStore is configured.
const defaultSynthesisPrompt = `Individual Section Summaries:
%s

Combine these section summaries into a comprehensive, well-structured final summary of the whole document.`

// AnalysisService runs the chunked analysis pipeline: split, per-chunk
// model calls, synthesis, classification. The llm parameter is optional
// (can be nil); without it the service produces deterministic rule-based
// results in fallback mode.
type AnalysisService struct {
	splitter    *chunker.Splitter
	llm         driven.LLMService
	classifier  *Classifier
	store       driven.AnalysisStore
	promptStore driven.PromptStore

	newID func() string
	now   func() time.Time
}

// NewAnalysisService creates a new analysis service.
// The store parameter is optional (can be nil): results are then only
// returned to the caller, not retained.
func NewAnalysisService(
	splitter *chunker.Splitter,
	llm driven.LLMService,
	classifier *Classifier,
	store driven.AnalysisStore,
) *AnalysisService {
	return &AnalysisService{
		splitter:   splitter,
		llm:        llm,
		classifier: classifier,
		store:      store,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses hardcoded default prompts.
func (s *AnalysisService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *AnalysisService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

// Process splits the document, drives the model over every chunk and
// returns the aggregated result. It always yields a result object; chunk
// failures degrade the result instead of aborting it.
func (s *AnalysisService) Process(ctx context.Context, doc *domain.Document, opts driving.ProcessOptions) (*domain.AnalysisResult, error) {
	if opts.ClassificationMode == "" {
		opts.ClassificationMode = "railway"
	}

	logger.Section("Document Analysis")
	logger.Debug("Document %q: %d characters, %d page(s)", doc.Source, len([]rune(doc.Text)), doc.Pages)

	chunks := s.splitter.Split(doc.Text)
	if len(chunks) == 0 {
		// Absorbed, not surfaced: an empty document still yields an
		// explicit empty analysis.
		logger.Info("Document %q: %v", doc.Source, domain.ErrEmptyDocument)
		result := s.emptyResult(doc, opts)
		s.persist(ctx, result)
		return result, nil
	}
	logger.Debug("Split into %d chunk(s), budget %d tokens", len(chunks), s.splitter.MaxTokens())

	var (
		results   []domain.ChunkResult
		cancelled bool
	)
	aiMode := s.llm != nil
	if aiMode {
		results, aiMode, cancelled = s.analyseChunks(ctx, chunks)
	}

	successes := successfulResults(results)

	var summary string
	var mode domain.ProcessingMode
	switch {
	case !aiMode || len(successes) == 0:
		// No model, or every chunk call failed: the pipeline still
		// produces a usable deterministic summary.
		summary = fallbackSummary(doc, chunks)
		mode = domain.ProcessingModeFallback
	case len(successes) == 1:
		// A lone partial summary is the document summary directly; a
		// synthesis call would be redundant.
		summary = successes[0].Summary
		mode = domain.ProcessingModeAI
	default:
		summary = s.synthesise(ctx, successes)
		mode = domain.ProcessingModeAI
	}

	if mode == domain.ProcessingModeAI && (cancelled || len(successes) < len(chunks)) {
		mode = domain.ProcessingModePartial
	}
	logger.Info("Processing mode: %s (%d/%d chunks succeeded)", mode, len(successes), len(chunks))

	var classification []domain.CategoryScore
	if opts.ClassificationMode != "none" {
		classification = s.classifier.Classify(chunks, results)
	}

	result := &domain.AnalysisResult{
		ID:             s.newID(),
		DocumentType:   DetectDocumentType(doc.Text),
		Summary:        summary,
		OCRText:        doc.Text,
		Classification: classification,
		KeyInformation: ExtractKeyInfo(summary),
		Metadata: domain.Metadata{
			TotalPages:         doc.Pages,
			TotalCharacters:    len([]rune(doc.Text)),
			EstimatedTokens:    chunker.EstimateTokens(doc.Text),
			LanguagesDetected:  doc.Languages,
			FilesProcessed:     opts.FilesProcessed,
			OCRLanguage:        opts.OCRLanguage,
			ClassificationMode: opts.ClassificationMode,
			ProcessingMode:     mode,
		},
		CreatedAt: s.now(),
	}

	s.persist(ctx, result)
	return result, nil
}

// analyseChunks issues one model call per chunk, strictly in order, so
// failures stay attributable to a document region. A provider failure on
// one chunk never aborts its siblings; a configuration failure on the
// first chunk switches the whole request to fallback mode. Cancellation
// keeps the results already obtained.
func (s *AnalysisService) analyseChunks(ctx context.Context, chunks []domain.Chunk) (results []domain.ChunkResult, aiMode, cancelled bool) {
	single := len(chunks) == 1

	for i, ch := range chunks {
		if ctx.Err() != nil {
			return results, true, true
		}

		var prompt string
		maxTokens := chunkSummaryMaxTokens
		if single {
			prompt = fmt.Sprintf(s.loadPrompt(driven.PromptSingleSummary, defaultSingleSummaryPrompt), ch.Text)
			maxTokens = singleSummaryMaxTokens
		} else {
			prompt = fmt.Sprintf(s.loadPrompt(driven.PromptChunkSummary, defaultChunkSummaryPrompt), i+1, ch.Text)
		}

		out, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
			MaxTokens:   maxTokens,
			Temperature: analysisTemperature,
		})
		if err != nil {
			if errors.Is(err, domain.ErrConfiguration) && i == 0 {
				logger.Info("Provider not configured, switching to fallback mode")
				return nil, false, false
			}
			if ctx.Err() != nil {
				return results, true, true
			}
			logger.Warn("Chunk %d/%d failed: %v", i+1, len(chunks), err)
			results = append(results, domain.ChunkResult{
				Position: ch.Position,
				OK:       false,
				Err:      err,
			})
			continue
		}

		logger.Debug("Summarised chunk %d/%d", i+1, len(chunks))
		results = append(results, domain.ChunkResult{
			Position: ch.Position,
			Summary:  strings.TrimSpace(out),
			Evidence: s.classifier.Evidence(out),
			OK:       true,
		})
	}

	return results, true, false
}

// synthesise combines the successful partial summaries into one document
// overview with a single model call. If that call fails the joined
// section summaries stand in, so a late failure cannot discard the work
// already done.
func (s *AnalysisService) synthesise(ctx context.Context, successes []domain.ChunkResult) string {
	parts := make([]string, len(successes))
	for i, r := range successes {
		parts[i] = fmt.Sprintf("Section %d Summary:\n%s", r.Position+1, r.Summary)
	}
	joined := strings.Join(parts, "\n\n")

	prompt := fmt.Sprintf(s.loadPrompt(driven.PromptSynthesis, defaultSynthesisPrompt), joined)
	out, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   synthesisMaxTokens,
		Temperature: analysisTemperature,
	})
	if err != nil || strings.TrimSpace(out) == "" {
		logger.Warn("Synthesis call failed: %v (joining section summaries)", err)
		return "Document Summary (Chunked Processing):\n\n" + joined
	}
	return strings.TrimSpace(out)
}

// successfulResults filters the results that carry a partial summary.
func successfulResults(results []domain.ChunkResult) []domain.ChunkResult {
	var out []domain.ChunkResult
	for _, r := range results {
		if r.OK {
			out = append(out, r)
		}
	}
	return out
}

// emptyResult is the explicit outcome for a document with no analysable
// content.
func (s *AnalysisService) emptyResult(doc *domain.Document, opts driving.ProcessOptions) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		ID:             s.newID(),
		DocumentType:   "Document",
		Summary:        "No analysable content was extracted from the document.",
		OCRText:        doc.Text,
		KeyInformation: ExtractKeyInfo(""),
		Metadata: domain.Metadata{
			TotalPages:         doc.Pages,
			LanguagesDetected:  doc.Languages,
			FilesProcessed:     opts.FilesProcessed,
			OCRLanguage:        opts.OCRLanguage,
			ClassificationMode: opts.ClassificationMode,
			ProcessingMode:     domain.ProcessingModeFallback,
		},
		CreatedAt: s.now(),
	}
}

// persist saves the result when a store is configured. Storage failures
// degrade to a warning - the analysis itself already succeeded.
func (s *AnalysisService) persist(ctx context.Context, result *domain.AnalysisResult) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, result); err != nil {
		logger.Warn("Failed to store analysis result %s: %v", result.ID, err)
	}
}
