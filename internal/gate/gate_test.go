package gate

import (
	"strings"
	"testing"

	"runbookai/internal/planner"
	"runbookai/internal/taxonomy"
)

func bullet(section taxonomy.SectionType, text, filename, chunkID string) planner.Bullet {
	return planner.Bullet{
		Text:     text,
		Section:  section,
		Filename: filename,
		ChunkID:  chunkID,
	}
}

func goodPlan() *planner.Plan {
	return &planner.Plan{
		FirstChecks: []planner.Bullet{
			bullet(taxonomy.SectionFirstChecks, "check the load average", "runbook-cpu.md", "c1"),
			bullet(taxonomy.SectionFirstChecks, "review recent deploys", "runbook-cpu.md", "c1"),
		},
		Fix: []planner.Bullet{
			bullet(taxonomy.SectionFix, "restart the worker pool", "docs-scaling.md", "c2"),
		},
		Validate: []planner.Bullet{
			bullet(taxonomy.SectionValidate, "confirm load drops below four", "docs-scaling.md", "c3"),
		},
		Sources: []string{"cpu#c1", "scaling#c2", "scaling#c3"},
	}
}

func TestCheckPasses(t *testing.T) {
	plan := goodPlan()
	report := New().Check("**First checks:**\n- check the load average", plan, nil)

	if !report.Passed {
		t.Fatalf("Check() failed: %v", report.Issues)
	}
	if report.RejectionMessage != "" {
		t.Error("rejection message set on a passing answer")
	}
	if report.Metrics.ActionableBullets != 4 {
		t.Errorf("actionable bullets = %d, want 4", report.Metrics.ActionableBullets)
	}
	if report.Metrics.DistinctFiles != 2 {
		t.Errorf("distinct files = %d, want 2", report.Metrics.DistinctFiles)
	}
}

func TestCheckTooFewBullets(t *testing.T) {
	plan := &planner.Plan{
		FirstChecks: []planner.Bullet{
			bullet(taxonomy.SectionFirstChecks, "check the load average", "runbook-cpu.md", "c1"),
		},
		Fix: []planner.Bullet{
			bullet(taxonomy.SectionFix, "restart the worker pool", "docs-scaling.md", "c2"),
		},
	}

	report := New().Check("answer text", plan, nil)
	if report.Passed {
		t.Fatal("Check() passed with 2 bullets")
	}
	if !hasIssueContaining(report.Issues, "actionable") {
		t.Errorf("issues %v missing actionability failure", report.Issues)
	}
	if report.RejectionMessage == "" {
		t.Error("no rejection message on failure")
	}
}

func TestCheckZeroBullets(t *testing.T) {
	report := New().Check("", &planner.Plan{}, nil)
	if report.Passed {
		t.Fatal("Check() passed an empty plan")
	}
	if report.Metrics.ActionableBullets != 0 {
		t.Errorf("actionable bullets = %d, want 0", report.Metrics.ActionableBullets)
	}
	if !hasIssueContaining(report.Issues, "actionable") {
		t.Errorf("issues %v missing actionability failure", report.Issues)
	}
}

func TestCheckSingleFileCoveringBothSections(t *testing.T) {
	plan := &planner.Plan{
		FirstChecks: []planner.Bullet{
			bullet(taxonomy.SectionFirstChecks, "check the queue depth", "runbook-queue.md", "c1"),
			bullet(taxonomy.SectionFirstChecks, "inspect the dlq size", "runbook-queue.md", "c1"),
		},
		Fix: []planner.Bullet{
			bullet(taxonomy.SectionFix, "restart the consumer group", "runbook-queue.md", "c2"),
		},
		Sources: []string{"queue#c1", "queue#c2"},
	}

	report := New().Check("specific answer", plan, nil)
	if !report.Passed {
		t.Fatalf("single file covering first checks and fix should pass, got %v", report.Issues)
	}
}

func TestCheckSingleFileWithoutFixFails(t *testing.T) {
	plan := &planner.Plan{
		FirstChecks: []planner.Bullet{
			bullet(taxonomy.SectionFirstChecks, "check the queue depth", "runbook-queue.md", "c1"),
			bullet(taxonomy.SectionFirstChecks, "inspect the dlq size", "runbook-queue.md", "c1"),
			bullet(taxonomy.SectionFirstChecks, "review the consumer lag", "runbook-queue.md", "c1"),
		},
	}

	report := New().Check("specific answer", plan, nil)
	if report.Passed {
		t.Fatal("single file without fix coverage should fail")
	}
	if !hasIssueContaining(report.Issues, "file coverage") {
		t.Errorf("issues %v missing file coverage failure", report.Issues)
	}
}

func TestCheckCountsWhyContributorsTowardCoverage(t *testing.T) {
	// All bullets come from one file, but the why-explanation cited a
	// second file; coverage counts the citations, not just the bullets.
	plan := &planner.Plan{
		FirstChecks: []planner.Bullet{
			bullet(taxonomy.SectionFirstChecks, "check the cpu load average", "runbook-cpu.md", "c1"),
			bullet(taxonomy.SectionFirstChecks, "review recent deploys", "runbook-cpu.md", "c1"),
			bullet(taxonomy.SectionFirstChecks, "inspect the busiest processes", "runbook-cpu.md", "c1"),
		},
		Why:     []string{"Sustained load above the threshold means the fleet is undersized."},
		Sources: []string{"cpu#c1", "scaling#c2"},
	}

	report := New().Check("specific answer", plan, nil)
	if report.Metrics.DistinctFiles != 2 {
		t.Errorf("distinct files = %d, want 2", report.Metrics.DistinctFiles)
	}
	if !report.Passed {
		t.Fatalf("Check() failed: %v", report.Issues)
	}
}

func TestCheckBannedPhrase(t *testing.T) {
	plan := goodPlan()
	answer := "For details, check the   relevant\ndocumentation on the wiki."

	report := New().Check(answer, plan, nil)
	if report.Passed {
		t.Fatal("Check() passed an answer with a banned phrase")
	}
	if report.Metrics.BannedPhraseHits == 0 {
		t.Error("banned phrase hits = 0, want > 0")
	}
	if !hasIssueContaining(report.Issues, "generic phrases") {
		t.Errorf("issues %v missing generic phrase failure", report.Issues)
	}
}

func TestCheckRejectionMessageDeterministic(t *testing.T) {
	plan := &planner.Plan{}
	first := New().Check("", plan, nil)
	second := New().Check("", plan, nil)
	if first.RejectionMessage != second.RejectionMessage {
		t.Error("rejection message differs between identical checks")
	}
	for _, want := range []string{"Failed checks", "First checks (0/3)", "Fix (0/2)", "Validate (0/2)"} {
		if !strings.Contains(first.RejectionMessage, want) {
			t.Errorf("rejection message missing %q:\n%s", want, first.RejectionMessage)
		}
	}
}

func TestCheckDiagnosticsRaiseEvidenceScore(t *testing.T) {
	plan := goodPlan()
	without := New().Check("answer", plan, nil)
	with := New().Check("answer", plan, map[string]any{
		"logs": "...", "queues": "...", "system": "...",
	})
	if with.Metrics.EvidenceScore <= without.Metrics.EvidenceScore {
		t.Errorf("evidence score with diagnostics = %d, without = %d; want higher",
			with.Metrics.EvidenceScore, without.Metrics.EvidenceScore)
	}
}

func hasIssueContaining(issues []string, substr string) bool {
	for _, issue := range issues {
		if strings.Contains(issue, substr) {
			return true
		}
	}
	return false
}
