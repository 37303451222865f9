package sectionizer

import "regexp"

// ContentStats summarizes a section's body for downstream scoring. Counting
// is pure regex work over the text; no external model is consulted.
type ContentStats struct {
	Bullets    int
	CodeBlocks int
	Links      int
	Commands   int
	Metrics    int
}

// HasCommands reports whether the section carries command-like tokens.
func (s ContentStats) HasCommands() bool { return s.Commands > 0 }

// HasMetrics reports whether the section carries metric-like tokens.
func (s ContentStats) HasMetrics() bool { return s.Metrics > 0 }

var (
	bulletLineRe  = regexp.MustCompile(`(?m)^\s*(?:[•\-*]|\d+\.|[A-Za-z]\.)\s+`)
	fencedBlockRe = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe  = regexp.MustCompile("`[^`\n]+`")
	mdLinkRe      = regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`)
	urlRe         = regexp.MustCompile(`https?://\S+`)
	metricUnitRe  = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:%|(?:ms|s|sec|min|kb|mb|gb|tb|bps|req/s|ops/s|qps|rps)\b)`)
	metricWordRe  = regexp.MustCompile(`(?i)\b(?:threshold|limit|quota|rate|latency|throughput|availability|uptime|saturation|p9[059])\b`)
)

// AnalyzeContent computes content stats for one section body.
func AnalyzeContent(content string) ContentStats {
	fenced := fencedBlockRe.FindAllString(content, -1)
	inline := inlineCodeRe.FindAllString(stripFenced(content), -1)

	return ContentStats{
		Bullets:    len(bulletLineRe.FindAllString(content, -1)),
		CodeBlocks: len(fenced),
		Links:      len(mdLinkRe.FindAllString(content, -1)) + len(urlRe.FindAllString(content, -1)),
		Commands:   len(fenced) + len(inline),
		Metrics:    len(metricUnitRe.FindAllString(content, -1)) + len(metricWordRe.FindAllString(content, -1)),
	}
}

// stripFenced removes fenced blocks so their backticks are not double
// counted as inline code spans.
func stripFenced(content string) string {
	return fencedBlockRe.ReplaceAllString(content, "")
}
