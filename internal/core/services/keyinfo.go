package services

import (
	"regexp"
	"strings"
)

// Key information categories in the order they appear in results.
var keyInfoLabels = []string{"names", "dates", "organizations", "locations", "contact_info"}

var (
	namePattern = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)

	// Numeric (12/03/2024) and written-out (12 March 2024) date forms.
	numericDatePattern = regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`)
	writtenDatePattern = regexp.MustCompile(`\b\d{1,2}(?:st|nd|rd|th)? (?:January|February|March|April|May|June|July|August|September|October|November|December) \d{4}\b`)

	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
)

// ExtractKeyInfo pulls key information out of a summary text using pattern
// matching. Matches keep first-occurrence order and are de-duplicated so
// the mapping is deterministic.
func ExtractKeyInfo(text string) map[string][]string {
	info := make(map[string][]string, len(keyInfoLabels))
	for _, label := range keyInfoLabels {
		info[label] = []string{}
	}

	info["names"] = dedupe(namePattern.FindAllString(text, -1))
	info["dates"] = dedupe(append(
		writtenDatePattern.FindAllString(text, -1),
		numericDatePattern.FindAllString(text, -1)...,
	))
	info["contact_info"] = dedupe(append(
		emailPattern.FindAllString(text, -1),
		phonePattern.FindAllString(text, -1)...,
	))

	return info
}

// dedupe removes duplicates while preserving first-occurrence order.
func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// documentTypeKeywords map content markers to a coarse document type guess.
var documentTypeKeywords = []struct {
	doctype  string
	keywords []string
}{
	{"Resume/CV", []string{"resume", "cv", "experience", "skills"}},
	{"Invoice", []string{"invoice", "bill", "payment"}},
	{"Contract", []string{"contract", "agreement", "terms"}},
	{"Report", []string{"report"}},
}

// DetectDocumentType guesses the coarse document type from its content.
func DetectDocumentType(text string) string {
	lower := strings.ToLower(text)
	for _, dt := range documentTypeKeywords {
		for _, kw := range dt.keywords {
			if strings.Contains(lower, kw) {
				return dt.doctype
			}
		}
	}
	return "Document"
}
