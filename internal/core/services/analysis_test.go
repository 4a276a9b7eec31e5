package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/raildocs-labs/raildocs-cli/internal/chunker"
	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driven"
	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driving"
)

// scriptedLLM returns canned responses in call order. When the script runs
// out, the last entry repeats.
type scriptedLLM struct {
	script  []scriptedCall
	calls   int
	prompts []string
}

type scriptedCall struct {
	text string
	err  error
}

func (s *scriptedLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	s.prompts = append(s.prompts, prompt)
	i := s.calls
	s.calls++
	if i >= len(s.script) {
		i = len(s.script) - 1
	}
	return s.script[i].text, s.script[i].err
}

func (s *scriptedLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	return "", errors.New("not scripted")
}

func (s *scriptedLLM) ModelName() string { return "scripted" }

func (s *scriptedLLM) Ping(context.Context) error { return nil }

func (s *scriptedLLM) Close() error { return nil }

// captureStore records saved results.
type captureStore struct {
	saved []*domain.AnalysisResult
	err   error
}

func (c *captureStore) Save(_ context.Context, result *domain.AnalysisResult) error {
	if c.err != nil {
		return c.err
	}
	c.saved = append(c.saved, result)
	return nil
}

func (c *captureStore) Get(context.Context, string) (*domain.AnalysisResult, error) {
	return nil, domain.ErrNotFound
}

func (c *captureStore) List(context.Context) ([]domain.AnalysisResult, error) {
	return nil, nil
}

func (c *captureStore) Delete(context.Context, string) error { return nil }

// threeChunkDoc splits into exactly three chunks with a 25 token budget.
func threeChunkDoc() *domain.Document {
	return &domain.Document{
		Source: "test.pdf",
		Text:   strings.Repeat("x", 250),
		Pages:  3,
	}
}

func TestProcessSingleChunk(t *testing.T) {
	llm := &scriptedLLM{script: []scriptedCall{{text: "A safety manual about hazard procedures."}}}
	svc := NewAnalysisService(chunker.New(), llm, NewClassifier(), nil)

	doc := &domain.Document{Source: "small.pdf", Text: "Safety first. Always wear PPE near the track.", Pages: 1}
	result, err := svc.Process(context.Background(), doc, driving.ProcessOptions{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if llm.calls != 1 {
		t.Errorf("expected 1 model call (no synthesis for one chunk), got %d", llm.calls)
	}
	if result.Summary != "A safety manual about hazard procedures." {
		t.Errorf("unexpected summary: %q", result.Summary)
	}
	if result.Metadata.ProcessingMode != domain.ProcessingModeAI {
		t.Errorf("expected ai mode, got %s", result.Metadata.ProcessingMode)
	}
	if result.Degraded() {
		t.Error("full AI coverage should not be degraded")
	}
	if result.ID == "" {
		t.Error("expected a result ID")
	}
}

func TestProcessMultiChunkSynthesis(t *testing.T) {
	llm := &scriptedLLM{script: []scriptedCall{
		{text: "Part one summary."},
		{text: "Part two summary."},
		{text: "Part three summary."},
		{text: "Combined overview."},
	}}
	splitter := chunker.New(chunker.WithMaxTokens(25))
	svc := NewAnalysisService(splitter, llm, NewClassifier(), nil)

	result, err := svc.Process(context.Background(), threeChunkDoc(), driving.ProcessOptions{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if llm.calls != 4 {
		t.Fatalf("expected 3 chunk calls + 1 synthesis, got %d", llm.calls)
	}
	if !strings.Contains(llm.prompts[0], "Document Section 1:") {
		t.Errorf("first prompt should name section 1, got %q", llm.prompts[0])
	}
	if !strings.Contains(llm.prompts[3], "Part two summary.") {
		t.Errorf("synthesis prompt should include partial summaries, got %q", llm.prompts[3])
	}
	if result.Summary != "Combined overview." {
		t.Errorf("unexpected summary: %q", result.Summary)
	}
	if result.Metadata.ProcessingMode != domain.ProcessingModeAI {
		t.Errorf("expected ai mode, got %s", result.Metadata.ProcessingMode)
	}
}

func TestProcessPartialFailure(t *testing.T) {
	providerErr := fmt.Errorf("%w: model overloaded", domain.ErrProvider)
	llm := &scriptedLLM{script: []scriptedCall{
		{text: "First section summary."},
		{err: providerErr},
		{text: "Third section summary."},
		{text: "Synthesis of the surviving sections."},
	}}
	splitter := chunker.New(chunker.WithMaxTokens(25))
	svc := NewAnalysisService(splitter, llm, NewClassifier(), nil)

	result, err := svc.Process(context.Background(), threeChunkDoc(), driving.ProcessOptions{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if llm.calls != 4 {
		t.Fatalf("failed chunk must not stop its siblings; got %d calls", llm.calls)
	}
	if !strings.Contains(llm.prompts[3], "First section summary.") ||
		!strings.Contains(llm.prompts[3], "Third section summary.") {
		t.Errorf("synthesis should cover the two successes, got %q", llm.prompts[3])
	}
	if result.Summary != "Synthesis of the surviving sections." {
		t.Errorf("unexpected summary: %q", result.Summary)
	}
	if result.Metadata.ProcessingMode != domain.ProcessingModePartial {
		t.Errorf("expected partial mode, got %s", result.Metadata.ProcessingMode)
	}
	if !result.Degraded() {
		t.Error("partial result should report as degraded")
	}
}

func TestProcessSynthesisFailureJoinsPartials(t *testing.T) {
	llm := &scriptedLLM{script: []scriptedCall{
		{text: "Part one."},
		{text: "Part two."},
		{text: "Part three."},
		{err: fmt.Errorf("%w: synthesis down", domain.ErrProvider)},
	}}
	splitter := chunker.New(chunker.WithMaxTokens(25))
	svc := NewAnalysisService(splitter, llm, NewClassifier(), nil)

	result, err := svc.Process(context.Background(), threeChunkDoc(), driving.ProcessOptions{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if !strings.Contains(result.Summary, "Part one.") || !strings.Contains(result.Summary, "Part three.") {
		t.Errorf("joined summary should keep the partials, got %q", result.Summary)
	}
	if result.Metadata.ProcessingMode != domain.ProcessingModeAI {
		t.Errorf("all chunks succeeded, expected ai mode, got %s", result.Metadata.ProcessingMode)
	}
}

func TestProcessNoModelFallback(t *testing.T) {
	svc := NewAnalysisService(chunker.New(), nil, NewClassifier(), nil)

	doc := &domain.Document{
		Source: "safety.pdf",
		Text:   "SAFETY MANUAL\n\nAll staff must complete hazard and risk training. Emergency procedures apply.",
		Pages:  1,
	}
	result, err := svc.Process(context.Background(), doc, driving.ProcessOptions{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if result.Metadata.ProcessingMode != domain.ProcessingModeFallback {
		t.Fatalf("expected fallback mode, got %s", result.Metadata.ProcessingMode)
	}
	if strings.TrimSpace(result.Summary) == "" {
		t.Error("fallback summary must not be empty")
	}
	if len(result.Classification) == 0 {
		t.Error("rule-based classification should still run without a model")
	}
	if result.Classification[0].Category != domain.CategorySafetyManual {
		t.Errorf("expected safety_manual on top, got %s", result.Classification[0].Category)
	}

	// Deterministic: a second run yields the identical summary.
	again, err := svc.Process(context.Background(), doc, driving.ProcessOptions{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if again.Summary != result.Summary {
		t.Error("fallback summary should be deterministic")
	}
}

func TestProcessConfigurationErrorSwitchesToFallback(t *testing.T) {
	llm := &scriptedLLM{script: []scriptedCall{
		{err: fmt.Errorf("%w: missing token", domain.ErrConfiguration)},
	}}
	splitter := chunker.New(chunker.WithMaxTokens(25))
	svc := NewAnalysisService(splitter, llm, NewClassifier(), nil)

	result, err := svc.Process(context.Background(), threeChunkDoc(), driving.ProcessOptions{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if llm.calls != 1 {
		t.Errorf("configuration failure should abort remaining chunk calls, got %d", llm.calls)
	}
	if result.Metadata.ProcessingMode != domain.ProcessingModeFallback {
		t.Errorf("expected fallback mode, got %s", result.Metadata.ProcessingMode)
	}
	if strings.TrimSpace(result.Summary) == "" {
		t.Error("fallback summary must not be empty")
	}
}

func TestProcessCancellationKeepsPartials(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	llm := &scriptedLLM{}
	llm.script = []scriptedCall{{text: "First part."}}
	splitter := chunker.New(chunker.WithMaxTokens(25))
	svc := NewAnalysisService(splitter, llm, NewClassifier(), nil)

	// Cancel after the first chunk call.
	wrapped := &cancelAfterLLM{inner: llm, cancel: cancel, after: 1}
	svc.llm = wrapped

	result, err := svc.Process(ctx, threeChunkDoc(), driving.ProcessOptions{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if result.Metadata.ProcessingMode != domain.ProcessingModePartial {
		t.Errorf("expected partial mode after cancellation, got %s", result.Metadata.ProcessingMode)
	}
	if !strings.Contains(result.Summary, "First part.") {
		t.Errorf("the obtained partial should survive cancellation, got %q", result.Summary)
	}
}

// cancelAfterLLM cancels the context after a number of Generate calls.
type cancelAfterLLM struct {
	inner  *scriptedLLM
	cancel context.CancelFunc
	after  int
	calls  int
}

func (c *cancelAfterLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	out, err := c.inner.Generate(ctx, prompt, opts)
	c.calls++
	if c.calls == c.after {
		c.cancel()
	}
	return out, err
}

func (c *cancelAfterLLM) Chat(ctx context.Context, m []driven.ChatMessage, o driven.ChatOptions) (string, error) {
	return c.inner.Chat(ctx, m, o)
}

func (c *cancelAfterLLM) ModelName() string { return c.inner.ModelName() }

func (c *cancelAfterLLM) Ping(ctx context.Context) error { return c.inner.Ping(ctx) }

func (c *cancelAfterLLM) Close() error { return c.inner.Close() }

func TestProcessEmptyDocument(t *testing.T) {
	svc := NewAnalysisService(chunker.New(), nil, NewClassifier(), nil)

	result, err := svc.Process(context.Background(), &domain.Document{Source: "empty.pdf"}, driving.ProcessOptions{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if result.Metadata.ProcessingMode != domain.ProcessingModeFallback {
		t.Errorf("expected fallback mode, got %s", result.Metadata.ProcessingMode)
	}
	if strings.TrimSpace(result.Summary) == "" {
		t.Error("empty document still yields an explicit summary")
	}
	if len(result.Classification) != 0 {
		t.Errorf("no content means no classification, got %v", result.Classification)
	}
}

func TestProcessPersistsResult(t *testing.T) {
	store := &captureStore{}
	llm := &scriptedLLM{script: []scriptedCall{{text: "Summary."}}}
	svc := NewAnalysisService(chunker.New(), llm, NewClassifier(), store)

	doc := &domain.Document{Source: "a.pdf", Text: "Routine maintenance report for track inspection.", Pages: 1}
	result, err := svc.Process(context.Background(), doc, driving.ProcessOptions{FilesProcessed: 1, OCRLanguage: "eng"})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(store.saved) != 1 {
		t.Fatalf("expected 1 stored result, got %d", len(store.saved))
	}
	if store.saved[0].ID != result.ID {
		t.Error("stored result should match the returned one")
	}

	t.Run("store failure does not fail the analysis", func(t *testing.T) {
		svc := NewAnalysisService(chunker.New(),
			&scriptedLLM{script: []scriptedCall{{text: "Summary."}}},
			NewClassifier(), &captureStore{err: errors.New("disk full")})
		if _, err := svc.Process(context.Background(), doc, driving.ProcessOptions{}); err != nil {
			t.Fatalf("Process() error = %v", err)
		}
	})
}

func TestProcessMetadata(t *testing.T) {
	llm := &scriptedLLM{script: []scriptedCall{{text: "Summary."}}}
	svc := NewAnalysisService(chunker.New(), llm, NewClassifier(), nil)

	doc := &domain.Document{
		Source:    "batch",
		Text:      "A short operational report about schedules.",
		Languages: []string{"eng", "mal"},
		Pages:     2,
	}
	result, err := svc.Process(context.Background(), doc, driving.ProcessOptions{
		OCRLanguage:        "eng+mal",
		ClassificationMode: "railway",
		FilesProcessed:     3,
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	md := result.Metadata
	if md.TotalPages != 2 || md.FilesProcessed != 3 {
		t.Errorf("unexpected page/file counts: %+v", md)
	}
	if md.TotalCharacters != len([]rune(doc.Text)) {
		t.Errorf("TotalCharacters = %d, want %d", md.TotalCharacters, len([]rune(doc.Text)))
	}
	if md.EstimatedTokens != chunker.EstimateTokens(doc.Text) {
		t.Errorf("EstimatedTokens = %d", md.EstimatedTokens)
	}
	if md.OCRLanguage != "eng+mal" || md.ClassificationMode != "railway" {
		t.Errorf("options not carried into metadata: %+v", md)
	}
	if len(md.LanguagesDetected) != 2 {
		t.Errorf("languages not carried: %v", md.LanguagesDetected)
	}
}

func TestProcessClassificationModeNone(t *testing.T) {
	llm := &scriptedLLM{script: []scriptedCall{{text: "A safety hazard summary."}}}
	svc := NewAnalysisService(chunker.New(), llm, NewClassifier(), nil)

	doc := &domain.Document{Source: "a.pdf", Text: "Safety hazard emergency procedures.", Pages: 1}
	result, err := svc.Process(context.Background(), doc, driving.ProcessOptions{ClassificationMode: "none"})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(result.Classification) != 0 {
		t.Errorf("classification disabled, got %v", result.Classification)
	}
}
