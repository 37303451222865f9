package rag

import (
	"fmt"
	"sort"
	"strings"

	"runbookai/internal/planner"
)

// composeAnswer renders a plan as the fixed markdown answer layout. Sections
// with no content are omitted; the order never changes. All plan text comes
// from the corpus; diagnostics are caller-supplied pre-collected outputs,
// never executed here.
func composeAnswer(plan *planner.Plan, diagnostics map[string]any) string {
	var b strings.Builder

	writeBullets(&b, "**First checks:**", plan.FirstChecks)

	if len(plan.Why) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("**Why:**\n")
		b.WriteString(strings.Join(plan.Why, " "))
		b.WriteString("\n")
	}

	writeBullets(&b, "**Fix:**", plan.Fix)
	writeBullets(&b, "**Validate:**", plan.Validate)
	writeDiagnostics(&b, diagnostics)

	if len(plan.Sources) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("**Sources:**\n")
		for _, source := range plan.Sources {
			b.WriteString("- ")
			b.WriteString(source)
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// writeDiagnostics renders caller-supplied diagnostics as "- name: output"
// lines, sorted by name for stable output. Empty entries are dropped.
func writeDiagnostics(b *strings.Builder, diagnostics map[string]any) {
	names := make([]string, 0, len(diagnostics))
	for name, value := range diagnostics {
		if value == nil || fmt.Sprint(value) == "" {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return
	}
	sort.Strings(names)

	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString("**Diagnostics:**\n")
	for _, name := range names {
		b.WriteString("- ")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(fmt.Sprint(diagnostics[name]))
		b.WriteString("\n")
	}
}

func writeBullets(b *strings.Builder, header string, bullets []planner.Bullet) {
	if len(bullets) == 0 {
		return
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(header)
	b.WriteString("\n")
	for _, bullet := range bullets {
		b.WriteString("- ")
		b.WriteString(bullet.Text)
		b.WriteString("\n")
	}
}
