package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
)

// Classification tuning. The blend weights decide how AI chunk evidence is
// mixed with the keyword rule signal when both are present.
const (
	// DefaultMinConfidence drops categories below this threshold entirely.
	DefaultMinConfidence = 0.1

	// DefaultMaxCategories caps the returned classification list.
	DefaultMaxCategories = 5

	// ruleBlendWeight and aiBlendWeight combine the two evidence sources.
	ruleBlendWeight = 0.6
	aiBlendWeight   = 0.4

	// strongSignal marks a chunk as strongly matching for the frequency bonus.
	strongSignal = 0.3

	// frequencyBonus is added per extra strongly-matching chunk.
	frequencyBonus = 0.05

	// metroBoostThreshold gates the metro-relevance boost.
	metroBoostThreshold = 0.3
)

// Classifier scores documents against the closed railway category set.
// Scoring is purely rule-driven plus optional AI chunk evidence, so the
// result is deterministic given identical inputs.
type Classifier struct {
	minConfidence float64
	maxCategories int
}

// ClassifierOption configures the classifier.
type ClassifierOption func(*Classifier)

// WithMinConfidence sets the omission threshold.
func WithMinConfidence(min float64) ClassifierOption {
	return func(c *Classifier) {
		if min >= 0 {
			c.minConfidence = min
		}
	}
}

// WithMaxCategories caps the number of returned categories.
func WithMaxCategories(n int) ClassifierOption {
	return func(c *Classifier) {
		if n > 0 {
			c.maxCategories = n
		}
	}
}

// NewClassifier creates a classifier with the given options.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		minConfidence: DefaultMinConfidence,
		maxCategories: DefaultMaxCategories,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// nonWord strips punctuation so keyword matching sees clean word runs.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// preprocess lowercases, strips punctuation and collapses whitespace.
func preprocess(text string) string {
	text = strings.ToLower(text)
	text = nonWord.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// ruleSignal scores one text against one category rule, in [0,1].
// Matched keywords count once plus a small bonus per occurrence, the ratio
// is weighted per category and clamped.
func ruleSignal(preprocessed string, rule domain.CategoryRule) float64 {
	if len(rule.Keywords) == 0 || preprocessed == "" {
		return 0
	}

	matched := 0.0
	for _, kw := range rule.Keywords {
		if strings.Contains(preprocessed, kw) {
			matched += 1 + float64(strings.Count(preprocessed, kw))*0.1
		}
	}

	score := matched / float64(len(rule.Keywords)) * rule.Weight
	if score > 1 {
		score = 1
	}
	return score
}

// Evidence scores a text against every category, in stable category order.
// The analysis pipeline uses this to turn a model's partial summary into
// chunk-level category evidence.
func (c *Classifier) Evidence(text string) map[domain.Category]float64 {
	pre := preprocess(text)
	evidence := make(map[domain.Category]float64, len(domain.Categories()))
	for _, cat := range domain.Categories() {
		if sig := ruleSignal(pre, cat.Rule()); sig > 0 {
			evidence[cat] = sig
		}
	}
	return evidence
}

// MetroRelevance scores metro-operator specific content in [0,1].
func MetroRelevance(text string) float64 {
	pre := preprocess(text)
	if pre == "" {
		return 0
	}

	mentions := 0
	for _, kw := range domain.MetroKeywords {
		if strings.Contains(pre, kw) {
			mentions++
		}
	}

	score := float64(mentions) / float64(len(domain.MetroKeywords)) * 2
	if score > 1 {
		score = 1
	}
	return score
}

// Classify scores the document chunks against the category set and returns
// the significant categories ordered by confidence, descending.
//
// Per-chunk rule signals are blended with AI evidence where a successful
// ChunkResult provides it. Aggregation across chunks takes the maximum
// signal plus a frequency bonus - a single strongly-matching chunk is never
// diluted by many weakly-matching ones.
func (c *Classifier) Classify(chunks []domain.Chunk, results []domain.ChunkResult) []domain.CategoryScore {
	if len(chunks) == 0 {
		return nil
	}

	// AI evidence keyed by chunk position, successes only.
	aiEvidence := make(map[int]map[domain.Category]float64, len(results))
	for _, r := range results {
		if r.OK && len(r.Evidence) > 0 {
			aiEvidence[r.Position] = r.Evidence
		}
	}

	pre := make([]string, len(chunks))
	var whole strings.Builder
	for i, ch := range chunks {
		pre[i] = preprocess(ch.Text)
		whole.WriteString(ch.Text)
		whole.WriteString(" ")
	}
	metro := MetroRelevance(whole.String())

	var scores []domain.CategoryScore
	for _, cat := range domain.Categories() {
		rule := cat.Rule()

		best := 0.0
		strong := 0
		for i, ch := range chunks {
			sig := ruleSignal(pre[i], rule)
			if ev, ok := aiEvidence[ch.Position]; ok {
				if ai, ok := ev[cat]; ok {
					sig = ruleBlendWeight*sig + aiBlendWeight*ai
				}
			}
			if sig > best {
				best = sig
			}
			if sig > strongSignal {
				strong++
			}
		}

		conf := best
		if strong > 1 {
			conf += frequencyBonus * float64(strong-1)
		}
		if metro > metroBoostThreshold {
			conf *= 1 + metro*0.5
		}
		if conf > 1 {
			conf = 1
		}

		if conf > c.minConfidence {
			scores = append(scores, domain.CategoryScore{
				Category:       cat,
				Confidence:     conf,
				MetroRelevance: metro,
			})
		}
	}

	// Descending by confidence; category name breaks ties so the order is
	// reproducible.
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Confidence != scores[j].Confidence {
			return scores[i].Confidence > scores[j].Confidence
		}
		return scores[i].Category < scores[j].Category
	})

	if len(scores) > c.maxCategories {
		scores = scores[:c.maxCategories]
	}
	return scores
}
