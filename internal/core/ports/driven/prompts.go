package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible
	// default or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptChunkSummary summarises one section of a document.
	// The template expects %d (section number) and %s (section text).
	PromptChunkSummary = "chunk_summary"

	// PromptSynthesis combines section summaries into a document overview.
	// The template expects a %s placeholder for the joined section summaries.
	PromptSynthesis = "synthesis"

	// PromptSingleSummary summarises a document that fits in one request.
	// The template expects a %s placeholder for the document text.
	PromptSingleSummary = "single_summary"

	// PromptChatSystem is the system prompt for conversational mode.
	// This prompt has no format placeholders.
	PromptChatSystem = "chat_system"
)
