package services

import (
	"fmt"
	"strings"

	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
)

// fallbackExcerptRunes is the excerpt length taken from each chunk when the
// model is unavailable.
const fallbackExcerptRunes = 200

// maxFallbackHeadings caps the headings listed in a fallback summary.
const maxFallbackHeadings = 10

// fallbackSummary builds a deterministic summary without the model: an
// excerpt per chunk plus structural markers found by pattern matching.
// The same document always yields the same summary.
func fallbackSummary(doc *domain.Document, chunks []domain.Chunk) string {
	var b strings.Builder

	paragraphs := 0
	for _, ch := range chunks {
		paragraphs += len(splitParagraphs(ch.Text))
	}

	fmt.Fprintf(&b, "Document overview (rule-based, no AI): %d section(s), %d paragraph(s), %d page(s), %d characters.\n",
		len(chunks), paragraphs, doc.Pages, len([]rune(doc.Text)))

	if headings := detectHeadings(doc.Text); len(headings) > 0 {
		b.WriteString("Headings found: ")
		b.WriteString(strings.Join(headings, "; "))
		b.WriteString("\n")
	}

	for _, ch := range chunks {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Section %d: %s", ch.Position+1, excerpt(ch.Text, fallbackExcerptRunes))
	}

	return b.String()
}

// splitParagraphs splits on blank lines, dropping empty segments.
func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// detectHeadings finds short lines that look like headings: fully
// uppercase, or ending with a colon.
func detectHeadings(text string) []string {
	var headings []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len([]rune(line)) > 60 {
			continue
		}
		if isAllUpper(line) || strings.HasSuffix(line, ":") {
			headings = append(headings, strings.TrimSuffix(line, ":"))
			if len(headings) == maxFallbackHeadings {
				break
			}
		}
	}
	return headings
}

// isAllUpper reports whether the line contains letters and none of them
// are lowercase.
func isAllUpper(line string) bool {
	hasLetter := false
	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// excerpt returns the first n runes of text with collapsed whitespace.
func excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
