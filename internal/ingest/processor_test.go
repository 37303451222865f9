package ingest

import (
	"strings"
	"testing"
)

const sampleDoc = `# High CPU Runbook
some background before the checks
## First Checks
- check the load average with uptime
- review recent deploys
## Fix
restart the busiest worker
`

func TestProcessAssignsSectionMetadata(t *testing.T) {
	chunks := NewProcessor().Process("doc-1", "runbook-cpu.md", sampleDoc)
	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}

	types := make(map[string]bool)
	for _, chunk := range chunks {
		if chunk.DocumentID != "doc-1" {
			t.Errorf("chunk %s document ID = %q", chunk.ID, chunk.DocumentID)
		}
		if chunk.Filename != "runbook-cpu.md" {
			t.Errorf("chunk %s filename = %q", chunk.ID, chunk.Filename)
		}
		if chunk.SectionPath == "" {
			t.Errorf("chunk %s has no section path", chunk.ID)
		}
		types[chunk.SectionType] = true
	}

	for _, want := range []string{"first_checks", "fix"} {
		if !types[want] {
			t.Errorf("no chunk carries section type %q, got %v", want, types)
		}
	}
}

func TestProcessStoresEachLineOnce(t *testing.T) {
	// Lines under a subsection heading belong to that subsection's chunk
	// only; the parent section must not chunk them a second time.
	chunks := NewProcessor().Process("doc-1", "runbook-cpu.md", sampleDoc)

	for _, line := range strings.Split(strings.TrimSpace(sampleDoc), "\n") {
		var holders int
		for _, chunk := range chunks {
			if strings.Contains(chunk.Text, line) {
				holders++
			}
		}
		if holders != 1 {
			t.Errorf("line %q stored in %d chunks, want 1", line, holders)
		}
	}
}

func TestProcessChunkIDsAreIdempotent(t *testing.T) {
	p := NewProcessor()

	first := p.Process("doc-1", "runbook-cpu.md", sampleDoc)
	second := p.Process("doc-1", "runbook-cpu.md", sampleDoc)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("chunk %d ID changed between runs: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}

	// Changed content must produce different IDs.
	changed := p.Process("doc-1", "runbook-cpu.md", sampleDoc+"\nextra trailing line in fix")
	changedIDs := make(map[string]struct{})
	for _, chunk := range changed {
		changedIDs[chunk.ID] = struct{}{}
	}
	var overlap, total int
	for _, chunk := range first {
		total++
		if _, ok := changedIDs[chunk.ID]; ok {
			overlap++
		}
	}
	if overlap == total {
		t.Error("all chunk IDs identical after a content change")
	}
}

func TestProcessChunkStats(t *testing.T) {
	content := "# Fix Guide\n## Fix\n- restart with `systemctl restart app`\n- keep latency under 200ms\n"

	chunks := NewProcessor().Process("doc-1", "guide.md", content)

	var fixChunk bool
	for _, chunk := range chunks {
		if chunk.SectionType != "fix" {
			continue
		}
		fixChunk = true
		if !chunk.HasCommands {
			t.Error("fix chunk HasCommands = false, want true")
		}
		if !chunk.HasMetrics {
			t.Error("fix chunk HasMetrics = false, want true")
		}
		if chunk.BulletCount != 2 {
			t.Errorf("fix chunk bullets = %d, want 2", chunk.BulletCount)
		}
	}
	if !fixChunk {
		t.Fatal("no fix chunk produced")
	}
}

func TestProcessEmptyAndHeadingless(t *testing.T) {
	p := NewProcessor()

	if chunks := p.Process("doc-1", "empty.md", ""); len(chunks) != 0 {
		t.Errorf("empty document produced %d chunks", len(chunks))
	}

	chunks := p.Process("doc-1", "plain.md", "no headings here, just prose about queues.")
	if len(chunks) != 1 {
		t.Fatalf("headingless document produced %d chunks, want 1", len(chunks))
	}
	if chunks[0].SectionType != "background" {
		t.Errorf("headingless chunk type = %q, want background", chunks[0].SectionType)
	}
}

func TestSplitBySize(t *testing.T) {
	paragraph := strings.Repeat("some words to fill the paragraph body. ", 10)
	body := paragraph + "\n\n" + paragraph + "\n\n" + paragraph

	pieces := splitBySize(body)
	if len(pieces) < 2 {
		t.Fatalf("oversized body produced %d pieces, want >= 2", len(pieces))
	}

	// Pieces reassemble to the original body.
	var rebuilt strings.Builder
	for _, p := range pieces {
		rebuilt.WriteString(p.text)
	}
	if rebuilt.String() != body {
		t.Error("pieces do not reassemble to the original body")
	}

	// Offsets point at the right positions.
	for _, p := range pieces {
		if !strings.HasPrefix(body[p.offset:], p.text) {
			t.Errorf("piece offset %d does not match its text", p.offset)
		}
	}
}

func TestSplitBySizeShortBodyPassesThrough(t *testing.T) {
	pieces := splitBySize("short body")
	if len(pieces) != 1 || pieces[0].text != "short body" {
		t.Errorf("splitBySize(short) = %+v, want single passthrough piece", pieces)
	}
}
