package planner

import (
	"path"
	"strings"
)

// citationPrefixes are document-kind prefixes stripped from filenames before
// citation, longest first so compound prefixes win.
var citationPrefixes = []string{
	"cheatsheet-", "procedure-", "playbook-", "runbook-", "policy-",
	"manual-", "guide-", "docs-", "sop-", "kb-",
}

// citationExtensions are stripped from cited filenames.
var citationExtensions = []string{".md", ".txt", ".pdf"}

// uncitableNames are repository boilerplate files never worth citing.
var uncitableNames = map[string]struct{}{
	"readme": {}, "license": {}, "changelog": {}, "contributing": {},
}

// NormalizeCitation maps a raw filename to its citation form: base name,
// lowercased, extension and document-kind prefix stripped. Returns false for
// boilerplate files that should not appear in citations.
func NormalizeCitation(filename string) (string, bool) {
	name := strings.ToLower(path.Base(strings.ReplaceAll(filename, "\\", "/")))
	for _, ext := range citationExtensions {
		if strings.HasSuffix(name, ext) {
			name = name[:len(name)-len(ext)]
			break
		}
	}
	for _, prefix := range citationPrefixes {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			name = name[len(prefix):]
			break
		}
	}
	if name == "" {
		return "", false
	}
	if _, boilerplate := uncitableNames[name]; boilerplate {
		return "", false
	}
	return name, true
}

// sourceRef is one (filename, chunk) evidence reference.
type sourceRef struct {
	filename string
	chunkID  string
}

// buildSources renders "filename#chunk_id" citations, normalized and
// deduplicated, preserving first-appearance order.
func buildSources(refs []sourceRef) []string {
	var sources []string
	seen := make(map[string]struct{})
	for _, ref := range refs {
		name, ok := NormalizeCitation(ref.filename)
		if !ok {
			continue
		}
		citation := name + "#" + ref.chunkID
		if _, dup := seen[citation]; dup {
			continue
		}
		seen[citation] = struct{}{}
		sources = append(sources, citation)
	}
	return sources
}
