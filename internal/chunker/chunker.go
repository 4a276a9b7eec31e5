// Package chunker splits document text into ordered, bounded segments
// sized to fit a model's input budget.
package chunker

import (
	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
)

// CharsPerToken is the fixed character-to-token ratio heuristic.
// It is applied identically when sizing chunks and when reporting the
// estimate to callers; no external tokenizer is involved.
const CharsPerToken = 4

// DefaultMaxTokens is the default per-chunk token budget.
const DefaultMaxTokens = 5000

// Splitter splits text into chunks bounded by an estimated token budget.
// Splits prefer paragraph boundaries, then sentence boundaries, and fall
// back to a hard cut only when no boundary exists within the budget.
type Splitter struct {
	maxTokens int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithMaxTokens sets the per-chunk token budget.
func WithMaxTokens(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		maxTokens: DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxTokens returns the configured per-chunk token budget.
func (s *Splitter) MaxTokens() int {
	return s.maxTokens
}

// EstimateTokens estimates the model-input tokens for a text.
func EstimateTokens(text string) int {
	runes := len([]rune(text))
	return (runes + CharsPerToken - 1) / CharsPerToken
}

// Split splits text into ordered, non-overlapping chunks covering the
// whole input. Concatenating the chunk texts in order reconstructs the
// input exactly. Empty input yields an empty sequence.
func (s *Splitter) Split(text string) []domain.Chunk {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	budget := s.maxTokens * CharsPerToken

	// No unnecessary splitting for input below the threshold.
	if len(runes) <= budget {
		return []domain.Chunk{{
			Position:        0,
			Text:            text,
			EstimatedTokens: EstimateTokens(text),
			Start:           0,
			End:             len(runes),
		}}
	}

	var chunks []domain.Chunk
	start := 0

	for start < len(runes) {
		end := start + budget
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = splitPoint(runes, start, end)
		}

		chunkText := string(runes[start:end])
		chunks = append(chunks, domain.Chunk{
			Position:        len(chunks),
			Text:            chunkText,
			EstimatedTokens: EstimateTokens(chunkText),
			Start:           start,
			End:             end,
		})
		start = end
	}

	return chunks
}

// splitPoint finds the best cut position in (start, limit]. Paragraph
// breaks win over sentence ends; a hard cut at limit is the last resort.
// Boundaries in the first half of the window are ignored so chunks do not
// degenerate into slivers.
func splitPoint(runes []rune, start, limit int) int {
	floor := start + (limit-start)/2

	for i := limit; i > floor; i-- {
		if isParagraphBreak(runes, i) {
			return i
		}
	}
	for i := limit; i > floor; i-- {
		if isSentenceEnd(runes, i) {
			return i
		}
	}
	return limit
}

// isParagraphBreak reports whether position i sits just after a blank line.
func isParagraphBreak(runes []rune, i int) bool {
	return i >= 2 && runes[i-1] == '\n' && runes[i-2] == '\n'
}

// isSentenceEnd reports whether position i sits just after a sentence
// terminator or a line break.
func isSentenceEnd(runes []rune, i int) bool {
	if i < 1 {
		return false
	}
	switch runes[i-1] {
	case '.', '!', '?', '\n':
		return true
	default:
		return false
	}
}
