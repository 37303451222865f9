package gate

import (
	"fmt"
	"strings"

	"runbookai/internal/planner"
)

// Section minimums the rejection message reports against. These mirror the
// planner's selection targets.
var sectionTargets = []struct {
	label string
	min   int
	count func(*planner.Plan) int
}{
	{"First checks", 3, func(p *planner.Plan) int { return len(p.FirstChecks) }},
	{"Fix", 2, func(p *planner.Plan) int { return len(p.Fix) }},
	{"Validate", 2, func(p *planner.Plan) int { return len(p.Validate) }},
}

// rejectionMessage renders the deterministic replacement answer: which rule
// families failed, which answer sections are under target, and what
// documentation would unblock a real answer. Same report, same message.
func rejectionMessage(report Report, plan *planner.Plan) string {
	var failed []string
	for _, issue := range report.Issues {
		switch {
		case strings.Contains(issue, "actionable"):
			failed = append(failed, "actionability")
		case strings.Contains(issue, "file coverage"):
			failed = append(failed, "evidence coverage")
		case strings.Contains(issue, "generic phrases"):
			failed = append(failed, "generic phrasing")
		}
	}

	var under []string
	for _, target := range sectionTargets {
		if n := target.count(plan); n < target.min {
			under = append(under, fmt.Sprintf("%s (%d/%d)", target.label, n, target.min))
		}
	}

	var b strings.Builder
	b.WriteString("**Not enough specific evidence to answer.**\n\n")
	b.WriteString("The knowledge base does not currently support a specific, actionable answer to this question.\n\n")

	b.WriteString("**Failed checks:** ")
	b.WriteString(strings.Join(failed, ", "))
	b.WriteString("\n")

	if len(under) > 0 {
		b.WriteString("**Under-represented sections:** ")
		b.WriteString(strings.Join(under, ", "))
		b.WriteString("\n")
	}

	b.WriteString("\n**To get a specific answer, ingest documentation covering:**\n")
	b.WriteString("- First checks: step-by-step investigation procedures\n")
	b.WriteString("- Fix: concrete commands, configuration changes, or procedures\n")
	b.WriteString("- Validate: how to confirm the fix worked\n")

	b.WriteString(fmt.Sprintf("\n**Measured quality:** %d actionable bullets, %d distinct files, evidence score %d.\n",
		report.Metrics.ActionableBullets, report.Metrics.DistinctFiles, report.Metrics.EvidenceScore))

	return b.String()
}
