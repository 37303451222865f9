package planner

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"runbookai/internal/retrieval"
	"runbookai/internal/taxonomy"
)

var (
	numberedMarkerRe = regexp.MustCompile(`^\d+[.)]\s+`)
	letteredMarkerRe = regexp.MustCompile(`^[A-Za-z][.)]\s+`)
	sentenceSplitRe  = regexp.MustCompile(`[.!?]\s+`)
)

// bulletMarkers are the literal prefixes that mark a list item.
var bulletMarkers = []string{"- ", "* ", "• ", "→ ", "→", "▶ ", "▶", "▪ ", "▪"}

// extractBullets pulls actionable bullet candidates from one ranked chunk.
// Marked list items win; a chunk with no list structure falls back to
// sentence splitting. A candidate is kept only when its leading token is an
// imperative verb from the closed vocabulary.
func extractBullets(result retrieval.Result) []Bullet {
	chunk := result.Chunk

	candidates := markedLines(chunk.Text)
	if len(candidates) == 0 {
		candidates = sentences(chunk.Text)
	}

	var bullets []Bullet
	for _, candidate := range candidates {
		text := strings.TrimSpace(candidate)
		if utf8.RuneCountInString(text) < 10 {
			continue
		}
		verb, ok := taxonomy.LeadingVerb(text)
		if !ok {
			continue
		}

		score := result.CombinedScore
		if chunk.HasCommands {
			score += bonusCommands
		}
		if chunk.HasMetrics {
			score += bonusMetrics
		}
		if utf8.RuneCountInString(text) > longBulletRunes {
			score += bonusLongBullet
		}

		bullets = append(bullets, Bullet{
			Text:     text,
			Verb:     verb,
			Section:  classifyBullet(verb, text, chunk.SectionType),
			Score:    score,
			Filename: chunk.Filename,
			ChunkID:  chunk.ID,
		})
	}
	return bullets
}

// classifyBullet places a bullet in an answer section. The source chunk's
// section type wins when it is one of the three answer sections; otherwise
// the verb and text decide.
func classifyBullet(verb, text, chunkSectionType string) taxonomy.SectionType {
	switch taxonomy.SectionType(chunkSectionType) {
	case taxonomy.SectionFirstChecks, taxonomy.SectionFix, taxonomy.SectionValidate:
		return taxonomy.SectionType(chunkSectionType)
	}
	return taxonomy.ClassifyAction(verb, text)
}

// markedLines returns the text of every list-marked line, markers stripped.
func markedLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if stripped, ok := stripMarker(trimmed); ok {
			out = append(out, stripped)
		}
	}
	return out
}

// stripMarker removes a leading list marker, reporting whether one was found.
func stripMarker(line string) (string, bool) {
	for _, marker := range bulletMarkers {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}
	if m := numberedMarkerRe.FindString(line); m != "" {
		return strings.TrimSpace(line[len(m):]), true
	}
	if m := letteredMarkerRe.FindString(line); m != "" {
		return strings.TrimSpace(line[len(m):]), true
	}
	return "", false
}

// sentences splits prose into sentence candidates.
func sentences(text string) []string {
	flat := strings.Join(strings.Fields(text), " ")
	if flat == "" {
		return nil
	}
	parts := sentenceSplitRe.Split(flat, -1)
	var out []string
	for _, part := range parts {
		part = strings.TrimSpace(strings.TrimRight(part, ".!?"))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
