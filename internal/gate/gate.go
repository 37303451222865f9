// Package gate enforces answer quality before anything reaches the caller.
// A gated answer either ships as-is or is replaced by a deterministic
// rejection that names what evidence is missing. The gate inspects; it never
// rewrites and never fails.
package gate

import (
	"fmt"
	"strings"

	"runbookai/internal/planner"
	"runbookai/internal/taxonomy"
)

// Quality minimums.
const (
	minActionableBullets = 3
	minDistinctFiles     = 2
	maxCitationPoints    = 3
)

// bannedPhrases are generic filler formulations. Matching is
// case-insensitive substring search over whitespace-normalized answer text.
var bannedPhrases = []string{
	"check the relevant documentation",
	"refer to the retrieved documentation",
	"based on the retrieved context",
	"consult the docs",
	"check the documentation",
	"refer to documentation",
	"see the documentation",
	"review the documentation",
	"look at the documentation",
	"examine the documentation",
	"consult relevant docs",
	"check appropriate documentation",
	"refer to appropriate docs",
	"based on available information",
	"according to the context",
	"as per the retrieved information",
	"from the provided context",
	"based on what was found",
	"according to what was retrieved",
	"based on the available context",
}

// Metrics are the measured quality numbers, reported on pass and fail alike.
type Metrics struct {
	ActionableBullets int `json:"actionable_bullets"`
	DistinctFiles     int `json:"distinct_files"`
	EvidenceScore     int `json:"evidence_score"`
	BannedPhraseHits  int `json:"banned_phrase_hits"`
}

// Report is the gate's verdict. RejectionMessage is set only when the answer
// failed; it replaces the answer text.
type Report struct {
	Passed           bool
	Issues           []string
	RejectionMessage string
	Metrics          Metrics
}

// Gate checks composed answers against the quality rules.
type Gate struct{}

// New creates a gate.
func New() *Gate {
	return &Gate{}
}

// Check evaluates a composed answer and its plan. diagnostics is optional
// live system data attached by the caller; it raises the evidence score but
// never substitutes for citations. Check always returns a report.
func (g *Gate) Check(answer string, plan *planner.Plan, diagnostics map[string]any) Report {
	bullets := plan.Bullets()

	report := Report{
		Metrics: Metrics{
			ActionableBullets: len(bullets),
			DistinctFiles:     countDistinctFiles(plan.Sources),
			EvidenceScore:     evidenceScore(plan.Sources, diagnostics),
		},
	}

	if len(bullets) < minActionableBullets {
		report.Issues = append(report.Issues,
			fmt.Sprintf("insufficient actionable content: %d/%d bullets required",
				len(bullets), minActionableBullets))
	}

	if !hasEnoughFileCoverage(bullets, report.Metrics.DistinctFiles) {
		report.Issues = append(report.Issues,
			fmt.Sprintf("insufficient file coverage: %d/%d distinct files required (or one file covering both first checks and fix)",
				report.Metrics.DistinctFiles, minDistinctFiles))
	}

	hits := findBannedPhrases(answer)
	report.Metrics.BannedPhraseHits = len(hits)
	if len(hits) > 0 {
		report.Issues = append(report.Issues,
			fmt.Sprintf("contains generic phrases: %s", strings.Join(hits, ", ")))
	}

	report.Passed = len(report.Issues) == 0
	if !report.Passed {
		report.RejectionMessage = rejectionMessage(report, plan)
	}
	return report
}

// countDistinctFiles counts distinct files among the citations. Sources
// arrive as "filename#chunk_id" with the filename already normalized, so
// why-explanation contributors count toward coverage alongside bullets.
func countDistinctFiles(sources []string) int {
	files := make(map[string]struct{}, len(sources))
	for _, source := range sources {
		name := source
		if i := strings.Index(source, "#"); i >= 0 {
			name = source[:i]
		}
		if name != "" {
			files[name] = struct{}{}
		}
	}
	return len(files)
}

// hasEnoughFileCoverage applies the evidence rule: two distinct files, or a
// single file that grounds both the first checks and the fix.
func hasEnoughFileCoverage(bullets []planner.Bullet, distinctFiles int) bool {
	if distinctFiles >= minDistinctFiles {
		return true
	}
	if distinctFiles != 1 {
		return false
	}
	var hasFirstChecks, hasFix bool
	for _, bullet := range bullets {
		switch bullet.Section {
		case taxonomy.SectionFirstChecks:
			hasFirstChecks = true
		case taxonomy.SectionFix:
			hasFix = true
		}
	}
	return hasFirstChecks && hasFix
}

// evidenceScore is citations capped at maxCitationPoints, plus bonus points
// when live diagnostics accompany the answer.
func evidenceScore(sources []string, diagnostics map[string]any) int {
	score := len(sources)
	if score > maxCitationPoints {
		score = maxCitationPoints
	}
	if len(diagnostics) > 0 {
		score++
		if len(diagnostics) >= 3 {
			score++
		}
	}
	return score
}

// findBannedPhrases returns each banned phrase present in the answer, in
// table order.
func findBannedPhrases(answer string) []string {
	normalized := strings.ToLower(strings.Join(strings.Fields(answer), " "))
	var found []string
	for _, phrase := range bannedPhrases {
		if strings.Contains(normalized, phrase) {
			found = append(found, phrase)
		}
	}
	return found
}
