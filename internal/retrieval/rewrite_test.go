package retrieval

import (
	"strings"
	"testing"
)

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		question string
		wantAdd  []string
		wantSame bool
	}{
		{
			name:     "cpu trigger adds related terms",
			question: "why is cpu usage high",
			wantAdd:  []string{"performance", "monitoring", "metrics"},
		},
		{
			name:     "latency trigger",
			question: "api is slow today",
			wantAdd:  []string{"response time", "bottleneck"},
		},
		{
			name:     "no trigger passes through",
			question: "what does the deploy script do",
			wantSame: true,
		},
		{
			name:     "empty question passes through",
			question: "",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RewriteQuery(tt.question)
			if tt.wantSame {
				if got != tt.question {
					t.Fatalf("RewriteQuery(%q) = %q, want unchanged", tt.question, got)
				}
				return
			}
			if !strings.HasPrefix(got, tt.question) {
				t.Fatalf("rewritten query %q does not start with the original", got)
			}
			for _, term := range tt.wantAdd {
				if !strings.Contains(got, term) {
					t.Errorf("rewritten query %q missing related term %q", got, term)
				}
			}
		})
	}
}

func TestRewriteQueryNoDuplicates(t *testing.T) {
	// "performance" is both in the question and a cpu-related term.
	got := RewriteQuery("cpu performance problem")
	if n := strings.Count(got, "performance"); n != 1 {
		t.Errorf("RewriteQuery kept %d copies of %q, want 1: %q", n, "performance", got)
	}
}

func TestRewriteQueryMultipleFamilies(t *testing.T) {
	got := RewriteQuery("cpu and memory pressure")
	for _, term := range []string{"monitoring", "allocation", "leak"} {
		if !strings.Contains(got, term) {
			t.Errorf("rewritten query %q missing %q", got, term)
		}
	}
}

func TestRewriteQueryTriggerAlsoRelated(t *testing.T) {
	// "backlog" triggers the queue family and is one of its related terms;
	// it must not be appended again.
	got := RewriteQuery("queue backlog keeps growing")
	if n := strings.Count(got, "backlog"); n != 1 {
		t.Errorf("RewriteQuery kept %d copies of %q, want 1: %q", n, "backlog", got)
	}
	for _, term := range []string{"processing", "throughput"} {
		if !strings.Contains(got, term) {
			t.Errorf("rewritten query %q missing %q", got, term)
		}
	}
}
