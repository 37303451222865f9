package sectionizer

import "testing"

func TestAnalyzeContent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want ContentStats
	}{
		{
			name: "empty",
			text: "",
			want: ContentStats{},
		},
		{
			name: "bullets",
			text: "- first item\n* second item\n1. third item\n  • indented item",
			want: ContentStats{Bullets: 4},
		},
		{
			name: "fenced block counts as command",
			text: "run this:\n```\ntop -b -n 1\n```",
			want: ContentStats{CodeBlocks: 1, Commands: 1},
		},
		{
			name: "inline code counts as command",
			text: "run `systemctl restart app` and `journalctl -u app`",
			want: ContentStats{Commands: 2},
		},
		{
			name: "fenced backticks not double counted",
			text: "```\necho hi\n```",
			want: ContentStats{CodeBlocks: 1, Commands: 1},
		},
		{
			name: "links",
			text: "see [dashboard](https://grafana.local/d/1) or https://wiki.local/cpu",
			want: ContentStats{Links: 2},
		},
		{
			name: "metric units",
			text: "p99 went from 120ms to 900ms with 85% saturation",
			want: ContentStats{Metrics: 5},
		},
		{
			name: "metric words",
			text: "watch the error rate against the alert threshold",
			want: ContentStats{Metrics: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeContent(tt.text)
			if got != tt.want {
				t.Errorf("AnalyzeContent(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestContentStatsFlags(t *testing.T) {
	stats := AnalyzeContent("check `uptime` and keep latency under 200ms")
	if !stats.HasCommands() {
		t.Error("HasCommands() = false, want true")
	}
	if !stats.HasMetrics() {
		t.Error("HasMetrics() = false, want true")
	}

	plain := AnalyzeContent("nothing interesting here")
	if plain.HasCommands() || plain.HasMetrics() {
		t.Errorf("plain text flags = %v/%v, want false/false", plain.HasCommands(), plain.HasMetrics())
	}
}
