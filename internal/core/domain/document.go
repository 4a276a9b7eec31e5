package domain

import "time"

// Document represents the OCR-extracted text of one processing request.
// It is immutable once produced by the OCR collaborator and owned by the
// pipeline for the duration of the request.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Source is the human-readable origin (file names, upload batch).
	Source string

	// Text is the full extracted text across all pages.
	Text string

	// Languages are the language tags reported by the OCR collaborator.
	Languages []string

	// Pages is the number of pages the text was extracted from.
	Pages int
}

// Chunk is a bounded contiguous slice of document text sized to fit the
// model's input budget. The ordered sequence of chunk texts, concatenated,
// reconstructs the document text losslessly.
type Chunk struct {
	// Position is the ordinal position within the document.
	Position int

	// Text is the chunk content.
	Text string

	// EstimatedTokens is the token estimate used when sizing the chunk.
	EstimatedTokens int

	// Start and End are rune offsets into the original document text.
	Start int
	End   int
}

// ChunkResult holds the outcome of analysing a single chunk.
// One is produced per chunk, in chunk order, whether or not the call
// succeeded, so partial failures stay attributable to a document region.
type ChunkResult struct {
	// Position mirrors the chunk's position.
	Position int

	// Summary is the model's partial summary for this chunk.
	Summary string

	// Evidence maps categories to AI-derived strength signals in [0,1].
	Evidence map[Category]float64

	// OK reports whether the chunk call succeeded.
	OK bool

	// Err records the failure for this chunk, nil when OK.
	Err error
}

// ProcessingMode records how an analysis was produced.
type ProcessingMode string

// Available processing modes.
const (
	// ProcessingModeAI means every chunk was analysed by the model.
	ProcessingModeAI ProcessingMode = "ai"

	// ProcessingModePartial means some chunk calls failed and the result
	// was synthesised from the chunks that succeeded.
	ProcessingModePartial ProcessingMode = "partial"

	// ProcessingModeFallback means no model was available and the result
	// was produced by the deterministic rule-based pipeline.
	ProcessingModeFallback ProcessingMode = "fallback"
)

// CategoryScore pairs a category with its confidence.
type CategoryScore struct {
	// Category is the classification category.
	Category Category `json:"category"`

	// Confidence expresses how strongly the document matches, in [0,1].
	Confidence float64 `json:"confidence"`

	// MetroRelevance is the metro-operator relevance signal, in [0,1].
	MetroRelevance float64 `json:"metro_relevance"`
}

// Metadata describes how an analysis result was produced.
type Metadata struct {
	TotalPages         int            `json:"total_pages"`
	TotalCharacters    int            `json:"total_characters"`
	EstimatedTokens    int            `json:"estimated_tokens"`
	LanguagesDetected  []string       `json:"languages_detected"`
	FilesProcessed     int            `json:"files_processed"`
	OCRLanguage        string         `json:"ocr_language"`
	ClassificationMode string         `json:"classification_mode"`
	ProcessingMode     ProcessingMode `json:"processing_mode"`
}

// AnalysisResult is the document-level outcome of one processing request.
// It is created once, immutable thereafter, and shared read-only with chat.
type AnalysisResult struct {
	// ID is the unique identifier for this analysis.
	ID string `json:"id"`

	// DocumentType is the heuristic document type guess.
	DocumentType string `json:"document_type"`

	// Summary is the document-level summary text.
	Summary string `json:"summary"`

	// OCRText is the full extracted text the analysis was run on.
	OCRText string `json:"ocr_text"`

	// Classification is ordered by confidence, descending.
	Classification []CategoryScore `json:"classification"`

	// KeyInformation maps category labels to ordered extracted strings.
	KeyInformation map[string][]string `json:"key_information"`

	// Metadata describes the processing run.
	Metadata Metadata `json:"metadata"`

	// CreatedAt is when the analysis completed.
	CreatedAt time.Time `json:"created_at"`
}

// Degraded reports whether the result was produced without full AI coverage.
func (r *AnalysisResult) Degraded() bool {
	return r.Metadata.ProcessingMode != ProcessingModeAI
}

// ChatTurn is a single message in a conversation about an analysis result.
type ChatTurn struct {
	// Role is "user" or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
