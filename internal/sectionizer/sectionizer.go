// Package sectionizer parses raw document text into a tree of labeled
// sections at ingestion time. Detection is a single line scan, so malformed
// input degrades to a whole-document background section instead of an error.
package sectionizer

import (
	"fmt"
	"regexp"
	"strings"

	"runbookai/internal/taxonomy"
)

// Section is one heading-delimited region of a document. Line ranges are
// inclusive and tile the document: each section ends on the line before the
// next heading of equal or shallower level, so a parent's range spans its
// subsections. Content covers only the section's own span, the heading and
// the lines before its first subsection; subsection text belongs to the
// subsection.
type Section struct {
	Title     string
	Type      taxonomy.SectionType
	Level     int
	HPath     string
	StartLine int
	EndLine   int
	Content   string
	Stats     ContentStats
}

var (
	markdownHeadingRe = regexp.MustCompile(`^(#{1,6})\s+(\S.*)$`)
	boldHeadingRe     = regexp.MustCompile(`^\*\*([^*]+)\*\*$`)
	numberedHeadingRe = regexp.MustCompile(`^\d+\.\s+(\S.*)$`)
	letteredHeadingRe = regexp.MustCompile(`^[A-Z]\.\s+(\S.*)$`)
	titleCaseRe       = regexp.MustCompile(`^[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*$`)
	slugStripRe       = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRe       = regexp.MustCompile(`[\s-]+`)
)

// DetectSections scans content line by line and returns the ordered section
// list. Documents without any detectable heading yield a single background
// section spanning the whole text.
func DetectSections(content string) []Section {
	lines := strings.Split(content, "\n")

	var sections []Section
	// Open sections, shallowest first. Closing pops everything at an equal
	// or deeper level than the incoming heading.
	var stack []int
	// Paths must stay unique within one document; repeated titles under the
	// same parent get a numeric suffix.
	seenPaths := make(map[string]int)
	// Level of the nearest enclosing markdown heading; non-markdown heading
	// styles sit one level below it so sibling styled headings share a level.
	markdownLevel := 0

	closeTo := func(level, endLine int) {
		for len(stack) > 0 && sections[stack[len(stack)-1]].Level >= level {
			idx := stack[len(stack)-1]
			if sections[idx].EndLine > endLine {
				sections[idx].EndLine = endLine
			}
			stack = stack[:len(stack)-1]
		}
	}

	for lineNum, raw := range lines {
		line := strings.TrimSpace(raw)

		title, level, markdown, ok := detectHeading(line)
		if !ok {
			continue
		}
		if markdown {
			markdownLevel = level
		} else {
			level = markdownLevel + 1
		}

		closeTo(level, lineNum-1)

		hpath := buildHPath(sections, stack, title)
		seenPaths[hpath]++
		if n := seenPaths[hpath]; n > 1 {
			hpath = fmt.Sprintf("%s-%d", hpath, n)
		}
		sections = append(sections, Section{
			Title:     title,
			Type:      taxonomy.ClassifyTitle(title),
			Level:     level,
			HPath:     hpath,
			StartLine: lineNum,
			EndLine:   len(lines) - 1,
		})
		stack = append(stack, len(sections)-1)
	}

	if len(sections) == 0 {
		root := Section{
			Title:     "",
			Type:      taxonomy.SectionBackground,
			Level:     1,
			HPath:     "document",
			StartLine: 0,
			EndLine:   len(lines) - 1,
			Content:   content,
		}
		root.Stats = AnalyzeContent(content)
		return []Section{root}
	}

	// Preamble text before the first heading becomes a leading background
	// section so line ranges partition the document.
	if first := sections[0].StartLine; first > 0 {
		preamble := Section{
			Title:     "",
			Type:      taxonomy.SectionBackground,
			Level:     1,
			HPath:     "preamble",
			StartLine: 0,
			EndLine:   first - 1,
		}
		sections = append([]Section{preamble}, sections...)
	}

	for i := range sections {
		// The next section in document order is the first subsection when it
		// starts inside this section's range. Content stops there so every
		// line of the document lands in exactly one section's content.
		end := sections[i].EndLine
		if i+1 < len(sections) && sections[i+1].StartLine <= end {
			end = sections[i+1].StartLine - 1
		}
		body := lines[sections[i].StartLine : end+1]
		sections[i].Content = strings.Join(body, "\n")
		sections[i].Stats = AnalyzeContent(sections[i].Content)
	}
	return sections
}

// detectHeading applies the independent heading detectors in a fixed order.
// markdown reports whether the heading carries an explicit level.
func detectHeading(line string) (title string, level int, markdown, ok bool) {
	if line == "" {
		return "", 0, false, false
	}
	if m := markdownHeadingRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[2]), len(m[1]), true, true
	}
	// Remaining detectors never fire on list items.
	if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") ||
		(strings.HasPrefix(line, "*") && !strings.HasPrefix(line, "**")) {
		return "", 0, false, false
	}
	if m := boldHeadingRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), 0, false, true
	}
	if isAllCaps(line) {
		return strings.TrimSuffix(line, ":"), 0, false, true
	}
	if m := numberedHeadingRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), 0, false, true
	}
	if m := letteredHeadingRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), 0, false, true
	}
	if len(line) < 60 && titleCaseRe.MatchString(line) {
		return line, 0, false, true
	}
	if strings.HasSuffix(line, ":") && len(line) < 80 {
		body := strings.TrimSuffix(line, ":")
		if !strings.ContainsAny(body, ".!?") && strings.TrimSpace(body) != "" {
			return strings.TrimSpace(body), 0, false, true
		}
	}
	return "", 0, false, false
}

// isAllCaps reports lines like "FIRST CHECKS" or "ROLLBACK:". Requires at
// least one letter, no lowercase letters, and no sentence punctuation.
func isAllCaps(line string) bool {
	if len(line) <= 3 || strings.HasSuffix(line, ".") {
		return false
	}
	hasLetter := false
	for _, r := range line {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		case r == ' ' || r == ':' || r == '-' || (r >= '0' && r <= '9'):
		default:
			return false
		}
	}
	return hasLetter
}

// buildHPath joins the slugs of every open ancestor with the new title's
// slug, e.g. "high-cpu/first-checks".
func buildHPath(sections []Section, stack []int, title string) string {
	parts := make([]string, 0, len(stack)+1)
	for _, idx := range stack {
		parts = append(parts, slugOf(sections[idx].Title))
	}
	parts = append(parts, slugOf(title))
	return strings.Join(parts, "/")
}

func slugOf(title string) string {
	slug := slugStripRe.ReplaceAllString(strings.ToLower(title), "")
	slug = slugSpaceRe.ReplaceAllString(strings.TrimSpace(slug), "-")
	if slug == "" {
		return "untitled"
	}
	return slug
}
