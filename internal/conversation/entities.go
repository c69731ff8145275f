// Package conversation is the Conversation Manager: session/message persistence,
// context-window budgeting, entity carryover across turns, and the live chat surface.
package conversation

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// EntityExtractor pulls a bounded list of salient entities out of conversation context,
// used to carry proper nouns and key terms forward into later turns without resending
// the full history. The Go ecosystem has no equivalent to spaCy's statistical NER, so
// this extractor uses a proper-noun heuristic (capitalized multi-word runs, quoted
// terms, and numeric/date-like tokens) instead — named explicitly as an approximation.
type EntityExtractor struct {
	mu    sync.Mutex
	cache map[string][]string
}

func NewEntityExtractor() *EntityExtractor {
	return &EntityExtractor{cache: make(map[string][]string)}
}

var (
	properNounRunRe = regexp.MustCompile(`\b([A-Z][a-zA-Z0-9]*(?:\s+[A-Z][a-zA-Z0-9]*){0,3})\b`)
	quotedRe        = regexp.MustCompile(`"([^"]{2,60})"`)
	numericRe       = regexp.MustCompile(`\b\d{1,4}(?:[-/]\d{1,2}(?:[-/]\d{1,4})?)?%?\b`)
	stopWords       = map[string]bool{
		"The": true, "A": true, "An": true, "What": true, "How": true, "Why": true,
		"When": true, "Where": true, "Who": true, "Which": true, "Is": true, "Are": true,
		"Do": true, "Does": true, "Can": true, "Could": true, "Would": true, "Should": true,
	}
)

// Extract returns up to maxEntities distinct entity strings found in context, using an
// in-process cache keyed by the exact context text so repeated calls across pipeline
// stages within one request don't redo the regex pass.
func (e *EntityExtractor) Extract(ctx context.Context, text string, maxEntities int) []string {
	if maxEntities <= 0 {
		maxEntities = 10
	}

	e.mu.Lock()
	if cached, ok := e.cache[text]; ok {
		e.mu.Unlock()
		return truncate(cached, maxEntities)
	}
	e.mu.Unlock()

	seen := make(map[string]bool)
	var entities []string

	for _, m := range quotedRe.FindAllStringSubmatch(text, -1) {
		add(&entities, seen, strings.TrimSpace(m[1]))
	}
	for _, m := range properNounRunRe.FindAllString(text, -1) {
		first := strings.Fields(m)[0]
		if stopWords[first] {
			continue
		}
		add(&entities, seen, m)
	}
	for _, m := range numericRe.FindAllString(text, -1) {
		add(&entities, seen, m)
	}

	sort.Strings(entities)

	e.mu.Lock()
	e.cache[text] = entities
	e.mu.Unlock()

	return truncate(entities, maxEntities)
}

func add(list *[]string, seen map[string]bool, s string) {
	if s == "" || seen[s] {
		return
	}
	seen[s] = true
	*list = append(*list, s)
}

func truncate(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}
