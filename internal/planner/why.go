package planner

import (
	"sort"
	"strings"

	"runbookai/internal/retrieval"
	"runbookai/internal/taxonomy"
)

const (
	maxWhyChunks    = 3
	maxWhySentences = 3
	whyThreshold    = 0.1
)

// explain builds the why section: sentences lifted from up to three
// high-scoring chunks that overlap the question. Chunks that contributed no
// selected bullet are preferred, so the explanation adds context instead of
// restating the steps. Returns the sentences and the chunks they came from.
func explain(question string, results []retrieval.Result, used map[string]struct{}) ([]string, []retrieval.Result) {
	questionTokens := tokenSet(question)
	if len(questionTokens) == 0 || len(results) == 0 {
		return nil, nil
	}

	ordered := make([]retrieval.Result, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		_, iUsed := used[ordered[i].Chunk.ID]
		_, jUsed := used[ordered[j].Chunk.ID]
		if iUsed != jUsed {
			return !iUsed
		}
		return ordered[i].CombinedScore > ordered[j].CombinedScore
	})
	if len(ordered) > maxWhyChunks {
		ordered = ordered[:maxWhyChunks]
	}

	type scored struct {
		text  string
		score float64
	}
	var picked []string
	var contributors []retrieval.Result
	seen := make(map[string]struct{})

	for _, result := range ordered {
		var best *scored
		for _, sentence := range sentences(result.Chunk.Text) {
			overlap := tokenOverlap(sentence, questionTokens)
			if overlap < whyThreshold {
				continue
			}
			key := normalizeText(sentence)
			if _, dup := seen[key]; dup {
				continue
			}
			if best == nil || overlap > best.score {
				best = &scored{text: sentence, score: overlap}
			}
		}
		if best == nil {
			continue
		}
		seen[normalizeText(best.text)] = struct{}{}
		picked = append(picked, best.text)
		contributors = append(contributors, result)
		if len(picked) >= maxWhySentences {
			break
		}
	}
	return picked, contributors
}

// tokenOverlap scores a sentence by the fraction of question tokens it
// shares.
func tokenOverlap(sentence string, questionTokens map[string]struct{}) float64 {
	shared := 0
	for token := range tokenSet(sentence) {
		if _, ok := questionTokens[token]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(questionTokens))
}

// tokenSet returns the non-stopword tokens of text as a set.
func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(normalizeText(text)) {
		if taxonomy.IsStopword(token) {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}

// normalizeText lowercases text and strips everything but letters, digits,
// and spaces. Used for both token comparison and dedup keys.
func normalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
