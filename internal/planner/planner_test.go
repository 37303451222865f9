package planner

import (
	"strings"
	"testing"

	"runbookai/internal/retrieval"
	"runbookai/internal/storage"
	"runbookai/internal/taxonomy"
)

func evidence(id, filename, sectionType, text string, score float64) retrieval.Result {
	return retrieval.Result{
		Chunk: &storage.Chunk{
			ID:          id,
			Filename:    filename,
			Text:        text,
			SectionType: sectionType,
		},
		CombinedScore: score,
	}
}

func TestBuildPlanClassifiesByChunkSection(t *testing.T) {
	results := []retrieval.Result{
		evidence("c1", "runbook-cpu.md", "first_checks",
			"- check the load average with uptime right away\n- review recent deploys for regressions",
			0.9),
		evidence("c2", "runbook-cpu.md", "fix",
			"- restart the affected worker processes cleanly\n- scale out the service by two replicas",
			0.8),
		evidence("c3", "docs-scaling.md", "validate",
			"- confirm the load average returns below four\n- rerun the capacity check afterwards",
			0.7),
	}

	plan := New().BuildPlan("why is cpu load high", results)

	if len(plan.FirstChecks) != 2 {
		t.Fatalf("first checks = %d bullets, want 2", len(plan.FirstChecks))
	}
	if len(plan.Fix) != 2 {
		t.Fatalf("fix = %d bullets, want 2", len(plan.Fix))
	}
	if len(plan.Validate) != 2 {
		t.Fatalf("validate = %d bullets, want 2", len(plan.Validate))
	}

	for _, bullet := range plan.FirstChecks {
		if bullet.Section != taxonomy.SectionFirstChecks {
			t.Errorf("bullet %q in wrong section %q", bullet.Text, bullet.Section)
		}
		if bullet.ChunkID != "c1" {
			t.Errorf("bullet %q lost provenance: chunk %s", bullet.Text, bullet.ChunkID)
		}
	}
}

func TestBuildPlanBackgroundChunkUsesVerbClassification(t *testing.T) {
	results := []retrieval.Result{
		evidence("c1", "notes.md", "background",
			"- check the connection pool saturation metrics\n- restart the pool manager if connections leak",
			0.9),
	}

	plan := New().BuildPlan("pool saturation", results)

	if len(plan.FirstChecks) != 1 {
		t.Fatalf("first checks = %d, want 1 (check verb)", len(plan.FirstChecks))
	}
	if len(plan.Fix) != 1 {
		t.Fatalf("fix = %d, want 1 (restart verb)", len(plan.Fix))
	}
}

func TestBuildPlanNonActionableLinesDropped(t *testing.T) {
	results := []retrieval.Result{
		evidence("c1", "notes.md", "first_checks",
			"- the system was slow yesterday\n- performance may vary under load\n- check the queue depth metrics first",
			0.9),
	}

	plan := New().BuildPlan("slow queue", results)

	bullets := plan.Bullets()
	if len(bullets) != 1 {
		t.Fatalf("got %d bullets, want 1", len(bullets))
	}
	if !strings.HasPrefix(bullets[0].Text, "check") {
		t.Errorf("kept non-actionable bullet %q", bullets[0].Text)
	}
}

func TestBuildPlanSentenceFallback(t *testing.T) {
	results := []retrieval.Result{
		evidence("c1", "runbook-queue.md", "fix",
			"Restart the consumer group when the backlog stalls. Throughput usually recovers in minutes.",
			0.9),
	}

	plan := New().BuildPlan("queue backlog", results)
	if len(plan.Fix) != 1 {
		t.Fatalf("fix = %d bullets, want 1 from sentence fallback", len(plan.Fix))
	}
	if !strings.HasPrefix(strings.ToLower(plan.Fix[0].Text), "restart") {
		t.Errorf("unexpected bullet %q", plan.Fix[0].Text)
	}
}

func TestBuildPlanSelectionCaps(t *testing.T) {
	var lines []string
	for _, verb := range []string{"check", "verify", "review", "inspect", "examine", "monitor", "measure"} {
		lines = append(lines, "- "+verb+" the relevant subsystem dashboards closely")
	}
	results := []retrieval.Result{
		evidence("c1", "runbook-cpu.md", "first_checks", strings.Join(lines, "\n"), 0.9),
	}

	plan := New().BuildPlan("cpu", results)
	if len(plan.FirstChecks) > maxFirstChecks {
		t.Errorf("first checks = %d bullets, cap is %d", len(plan.FirstChecks), maxFirstChecks)
	}
}

func TestBuildPlanDeduplicatesBullets(t *testing.T) {
	results := []retrieval.Result{
		evidence("c1", "a.md", "first_checks", "- Check the queue depth metrics", 0.9),
		evidence("c2", "b.md", "first_checks", "- check the queue depth metrics!", 0.5),
	}

	plan := New().BuildPlan("queue", results)
	if len(plan.FirstChecks) != 1 {
		t.Fatalf("got %d bullets, want 1 after dedup", len(plan.FirstChecks))
	}
	// The higher-scoring occurrence survives.
	if plan.FirstChecks[0].ChunkID != "c1" {
		t.Errorf("kept chunk %s, want c1", plan.FirstChecks[0].ChunkID)
	}
}

func TestBuildPlanWhyPrefersUnusedChunks(t *testing.T) {
	results := []retrieval.Result{
		evidence("c1", "runbook-cpu.md", "first_checks",
			"- check the cpu load average immediately",
			0.9),
		evidence("c2", "docs-cpu.md", "background",
			"Sustained cpu load above the alert threshold usually means the worker fleet is undersized.",
			0.8),
	}

	plan := New().BuildPlan("cpu load threshold", results)

	if len(plan.Why) == 0 {
		t.Fatal("no why explanation produced")
	}
	joined := strings.Join(plan.Why, " ")
	if !strings.Contains(joined, "undersized") {
		t.Errorf("why = %q, want the background chunk's sentence", joined)
	}
	// The why contributor shows up in the sources.
	found := false
	for _, source := range plan.Sources {
		if strings.HasSuffix(source, "#c2") {
			found = true
		}
	}
	if !found {
		t.Errorf("sources %v missing why contributor c2", plan.Sources)
	}
}

func TestBuildPlanSourcesNormalizedAndDeduped(t *testing.T) {
	results := []retrieval.Result{
		evidence("c1", "runbook-cpu.md", "first_checks",
			"- check the cpu load average immediately\n- review recent deploys for cpu regressions",
			0.9),
		evidence("c2", "README.md", "fix",
			"- restart the service with the standard procedure",
			0.8),
	}

	plan := New().BuildPlan("cpu load", results)

	for _, source := range plan.Sources {
		if strings.Contains(source, "runbook-") {
			t.Errorf("source %q kept its kind prefix", source)
		}
		if strings.Contains(source, ".md") {
			t.Errorf("source %q kept its extension", source)
		}
		if strings.HasPrefix(source, "readme") {
			t.Errorf("boilerplate file cited: %q", source)
		}
	}

	seen := make(map[string]struct{})
	for _, source := range plan.Sources {
		if _, dup := seen[source]; dup {
			t.Errorf("duplicate source %q", source)
		}
		seen[source] = struct{}{}
	}
}

func TestBuildPlanFallsBackToRetrievedSources(t *testing.T) {
	// No bullet survives extraction and no sentence matches the question,
	// yet the citations still name the chunks that were consulted.
	results := []retrieval.Result{
		evidence("c1", "runbook-cpu.md", "background",
			"The dashboards were migrated last quarter.", 0.9),
		evidence("c2", "docs-scaling.md", "background",
			"Older hosts stay on the legacy image.", 0.8),
	}

	plan := New().BuildPlan("disk pressure on ingest nodes", results)

	if got := len(plan.Bullets()); got != 0 {
		t.Fatalf("got %d bullets, want 0", got)
	}
	want := []string{"cpu#c1", "scaling#c2"}
	if len(plan.Sources) != len(want) {
		t.Fatalf("sources = %v, want %v", plan.Sources, want)
	}
	for i, source := range want {
		if plan.Sources[i] != source {
			t.Errorf("source %d = %q, want %q", i, plan.Sources[i], source)
		}
	}
}

func TestBuildPlanEmptyEvidence(t *testing.T) {
	plan := New().BuildPlan("anything", nil)
	if plan == nil {
		t.Fatal("BuildPlan returned nil")
	}
	if got := len(plan.Bullets()); got != 0 {
		t.Errorf("got %d bullets from no evidence", got)
	}
	if len(plan.Sources) != 0 {
		t.Errorf("got sources %v from no evidence", plan.Sources)
	}
}
