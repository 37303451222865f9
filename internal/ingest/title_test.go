package ingest

import "testing"

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		filename string
		want     string
	}{
		{
			name:     "first h1",
			content:  "# High CPU Runbook\nbody\n## Not The Title\n",
			filename: "cpu.md",
			want:     "High CPU Runbook",
		},
		{
			name:     "h1 later in the document still wins",
			content:  "## Early H2\ntext\n# The Real Title\n",
			filename: "doc.md",
			want:     "The Real Title",
		},
		{
			name:     "h2 fallback",
			content:  "## Queue Backlog Procedure\nbody\n",
			filename: "queue.md",
			want:     "Queue Backlog Procedure",
		},
		{
			name:     "formatted heading text flattened",
			content:  "# Scaling the `api` tier\n",
			filename: "scaling.md",
			want:     "Scaling the api tier",
		},
		{
			name:     "filename fallback",
			content:  "no headings here at all\n",
			filename: "runbook-cpu-load.md",
			want:     "Runbook Cpu Load",
		},
		{
			name:     "underscores split words too",
			content:  "",
			filename: "disk_space_alerts.txt",
			want:     "Disk Space Alerts",
		},
		{
			name:     "unusable filename",
			content:  "",
			filename: "-.md",
			want:     "Untitled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTitle([]byte(tt.content), tt.filename); got != tt.want {
				t.Errorf("ExtractTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
