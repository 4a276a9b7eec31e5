package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driven"
	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driving"
	"github.com/raildocs-labs/raildocs-cli/internal/logger"
)

var _ driving.ChatService = (*ChatService)(nil)

// Chat context bounds. The assembled context must stay well under the
// model's input budget regardless of document size.
const (
	chatSummaryRunes  = 2000
	chatMaxCategories = 3
	chatMaxHistory    = 6
	chatMaxTokens     = 1000
	chatTemperature   = 0.7
)

// defaultChatSystemPrompt is the fallback system prompt when no PromptStore
// is configured.
const defaultChatSystemPrompt = `You are a helpful assistant answering questions about an analysed document.
Use only the document context provided below. If the context does not contain
the answer, say so instead of guessing.`

// ChatService answers questions about an analysis result. The llm
// parameter is optional (can be nil); without it, or when the model call
// fails, a deterministic responder answers from the stored result.
type ChatService struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
}

// NewChatService creates a new chat service.
func NewChatService(llm driven.LLMService) *ChatService {
	return &ChatService{llm: llm}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *ChatService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Respond answers a question about the analysis result. The response is
// always non-empty; model failures degrade to the deterministic responder
// rather than surfacing as errors.
func (s *ChatService) Respond(ctx context.Context, message string, result *domain.AnalysisResult, history []domain.ChatTurn) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: empty message", domain.ErrInvalidInput)
	}

	if result == nil {
		return "No document has been analysed yet. Process a document first, then ask questions about it.", nil
	}

	if s.llm != nil {
		if answer := s.modelRespond(ctx, message, result, history); answer != "" {
			return answer, nil
		}
	}

	return fallbackRespond(message, result), nil
}

// modelRespond asks the model, returning "" on any failure so the caller
// can fall back.
func (s *ChatService) modelRespond(ctx context.Context, message string, result *domain.AnalysisResult, history []domain.ChatTurn) string {
	system := defaultChatSystemPrompt
	if s.promptStore != nil {
		if p, err := s.promptStore.Load(driven.PromptChatSystem); err == nil {
			system = p
		}
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: system + "\n\nDocument context:\n" + buildChatContext(message, result)},
	}
	if len(history) > chatMaxHistory {
		history = history[len(history)-chatMaxHistory:]
	}
	for _, turn := range history {
		messages = append(messages, driven.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: domain.RoleUser, Content: message})

	answer, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	})
	if err != nil {
		logger.Warn("Chat model call failed: %v (using deterministic responder)", err)
		return ""
	}
	return strings.TrimSpace(answer)
}

// buildChatContext assembles a bounded document context: the truncated
// summary, the top categories, and the key information sections whose
// labels overlap the question.
func buildChatContext(message string, result *domain.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Document type: %s\n", result.DocumentType)
	fmt.Fprintf(&b, "Summary:\n%s\n", truncateRunes(result.Summary, chatSummaryRunes))

	if len(result.Classification) > 0 {
		n := len(result.Classification)
		if n > chatMaxCategories {
			n = chatMaxCategories
		}
		b.WriteString("Categories: ")
		for i := 0; i < n; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			cs := result.Classification[i]
			fmt.Fprintf(&b, "%s (%.0f%%)", cs.Category.Display(), cs.Confidence*100)
		}
		b.WriteString("\n")
	}

	lower := strings.ToLower(message)
	for _, label := range keyInfoLabels {
		values := result.KeyInformation[label]
		if len(values) == 0 {
			continue
		}
		if !keyInfoRelevant(lower, label) {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", strings.ReplaceAll(label, "_", " "), strings.Join(values, ", "))
	}

	return b.String()
}

// keyInfoRelevant reports whether a key information section bears on the
// question.
func keyInfoRelevant(lowerMessage, label string) bool {
	switch label {
	case "dates":
		return containsAny(lowerMessage, "date", "when", "schedule", "deadline")
	case "names":
		return containsAny(lowerMessage, "name", "who", "person", "people")
	case "contact_info":
		return containsAny(lowerMessage, "contact", "email", "phone", "reach")
	case "organizations":
		return containsAny(lowerMessage, "organization", "organisation", "company", "department")
	case "locations":
		return containsAny(lowerMessage, "location", "where", "place", "site")
	default:
		return false
	}
}

// fallbackRespond answers deterministically from the stored result. The
// first matching intent wins, so answers stay predictable.
func fallbackRespond(message string, result *domain.AnalysisResult) string {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "summar"):
		return "Here is the document summary:\n\n" + truncateRunes(result.Summary, chatSummaryRunes)

	case containsAny(lower, "date", "schedule", "when"):
		if dates := result.KeyInformation["dates"]; len(dates) > 0 {
			return "The document mentions these dates: " + strings.Join(dates, ", ") + "."
		}
		return "No dates were detected in the document."

	case containsAny(lower, "safety", "compliance", "regulation"):
		if cat := findCategory(result, domain.CategorySafetyManual, domain.CategoryComplianceRegulatory); cat != nil {
			return fmt.Sprintf("The document was classified as %s with %.0f%% confidence.",
				cat.Category.Display(), cat.Confidence*100)
		}
		return "The document was not classified under safety or compliance categories."

	case containsAny(lower, "type", "kind", "document"):
		answer := fmt.Sprintf("This appears to be a %s", result.DocumentType)
		if len(result.Classification) > 0 {
			top := result.Classification[0]
			answer += fmt.Sprintf(", classified as %s with %.0f%% confidence", top.Category.Display(), top.Confidence*100)
		}
		return answer + "."

	default:
		return "I can answer questions about the analysed document's summary, dates, classification, and document type. " +
			"Try asking for a summary or about specific details."
	}
}

// findCategory returns the highest-confidence score among the given
// categories, nil when none is present.
func findCategory(result *domain.AnalysisResult, categories ...domain.Category) *domain.CategoryScore {
	for i := range result.Classification {
		for _, cat := range categories {
			if result.Classification[i].Category == cat {
				return &result.Classification[i]
			}
		}
	}
	return nil
}

// containsAny reports whether s contains any of the substrings.
func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// truncateRunes bounds text to n runes.
func truncateRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
