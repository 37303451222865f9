package retrieval

import (
	"strings"

	"runbookai/internal/taxonomy"
)

// RewriteQuery expands a question with related terms from every intent
// family whose trigger appears in it. Expansion terms append after the
// original text, duplicates (against the question and each other) are
// dropped, and the result is never expanded again. A question that fires no
// family passes through unchanged.
func RewriteQuery(question string) string {
	lower := strings.ToLower(question)

	seen := make(map[string]struct{})
	for _, token := range tokenize(question) {
		seen[token] = struct{}{}
	}

	var extra []string
	for _, hint := range taxonomy.IntentHints() {
		fired := false
		for _, trigger := range hint.Triggers {
			if strings.Contains(lower, trigger) {
				fired = true
				break
			}
		}
		if !fired {
			continue
		}
		for _, term := range hint.Related {
			if allTokensSeen(term, seen) {
				continue
			}
			extra = append(extra, term)
			for _, token := range tokenize(term) {
				seen[token] = struct{}{}
			}
		}
	}

	if len(extra) == 0 {
		return question
	}
	return question + " " + strings.Join(extra, " ")
}

// allTokensSeen reports whether every token of term is already present.
func allTokensSeen(term string, seen map[string]struct{}) bool {
	tokens := tokenize(term)
	if len(tokens) == 0 {
		return true
	}
	for _, token := range tokens {
		if _, ok := seen[token]; !ok {
			return false
		}
	}
	return true
}
