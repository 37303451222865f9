// Package taxonomy holds the closed vocabularies the pipeline classifies
// with: section keyword families, the imperative verb list, query intent
// hints, and the shared stopword set. Everything here is fixed data so that
// classification stays deterministic and testable; no component re-derives
// these tables at runtime.
package taxonomy

import "strings"

// SectionType labels a heading-delimited region of a runbook.
type SectionType string

const (
	SectionFirstChecks SectionType = "first_checks"
	SectionFix         SectionType = "fix"
	SectionValidate    SectionType = "validate"
	SectionPolicy      SectionType = "policy"
	SectionGotchas     SectionType = "gotchas"
	SectionBackground  SectionType = "background"
)

// Family is one ordered keyword family. Families are matched in declaration
// order and the first match wins, which fixes the precedence
// first_checks > fix > validate > policy > gotchas.
type Family struct {
	Type     SectionType
	Keywords []string
}

// Families returns the ordered section keyword families. Callers must not
// mutate the returned slice.
func Families() []Family {
	return sectionFamilies
}

var sectionFamilies = []Family{
	{Type: SectionFirstChecks, Keywords: []string{
		"first check", "quick check", "initial check", "immediate action",
		"first response", "emergency response", "urgent action",
		"initial response", "first step", "immediate step", "diagnosis",
		"investigation", "triage",
	}},
	{Type: SectionFix, Keywords: []string{
		"fix", "remediation", "resolution", "solution", "corrective action",
		"repair", "resolve", "recovery", "how to fix", "steps to resolve",
	}},
	{Type: SectionValidate, Keywords: []string{
		"validate", "validation", "verification", "verify", "confirm",
		"post fix check", "post-fix check", "check", "test",
	}},
	{Type: SectionPolicy, Keywords: []string{
		"policy", "policies", "procedure", "guideline", "standard", "rule",
		"requirement", "compliance", "governance", "sla", "escalation",
	}},
	{Type: SectionGotchas, Keywords: []string{
		"gotcha", "common mistake", "pitfall", "caveat", "warning",
		"caution", "important note", "watch out", "be careful", "known issue",
	}},
}

// ClassifyTitle maps a heading title to a section type. Matching is
// case-insensitive substring search over the ordered families; unmatched
// titles are background.
func ClassifyTitle(title string) SectionType {
	lower := strings.ToLower(title)
	for _, family := range sectionFamilies {
		for _, keyword := range family.Keywords {
			if strings.Contains(lower, keyword) {
				return family.Type
			}
		}
	}
	return SectionBackground
}

// actionVerbs is the closed imperative verb vocabulary. A candidate line is
// actionable only when its leading token is in this set; nothing is inferred
// beyond the table.
var actionVerbs = map[string]struct{}{
	"check": {}, "verify": {}, "review": {}, "inspect": {}, "examine": {},
	"monitor": {}, "watch": {}, "track": {}, "measure": {}, "collect": {},
	"diagnose": {}, "compare": {}, "capture": {},
	"set": {}, "increase": {}, "decrease": {}, "reduce": {}, "scale": {},
	"rollback": {}, "roll": {}, "pin": {}, "move": {}, "cap": {}, "raise": {},
	"switch": {}, "restart": {}, "restore": {}, "clear": {}, "flush": {},
	"reset": {}, "reload": {}, "refresh": {}, "update": {}, "upgrade": {},
	"downgrade": {}, "enable": {}, "disable": {}, "configure": {}, "tune": {},
	"optimize": {}, "adjust": {}, "modify": {}, "replace": {}, "remove": {},
	"drain": {}, "throttle": {}, "limit": {}, "rotate": {},
	"validate": {}, "confirm": {}, "ensure": {}, "test": {}, "rerun": {},
	"start": {}, "stop": {}, "pause": {}, "resume": {}, "kill": {},
	"terminate": {}, "cancel": {},
	"add": {}, "delete": {}, "create": {}, "deploy": {}, "install": {},
	"run": {}, "execute": {}, "launch": {}, "invoke": {}, "trigger": {},
	"escalate": {}, "notify": {}, "alert": {}, "document": {}, "log": {},
}

// LeadingVerb reports the imperative verb a line starts with, if any.
// Leading bullet decoration and markdown emphasis must already be stripped.
func LeadingVerb(text string) (string, bool) {
	trimmed := strings.TrimLeft(text, " \t")
	end := strings.IndexFunc(trimmed, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ':' || r == ',' || r == '.'
	})
	token := trimmed
	if end >= 0 {
		token = trimmed[:end]
	}
	token = strings.ToLower(strings.Trim(token, "*_`"))
	if token == "" {
		return "", false
	}
	if _, ok := actionVerbs[token]; ok {
		return token, true
	}
	return "", false
}

// Per-family verb hints used when a bullet's source chunk carries no usable
// section type. Checked in family order; verify deliberately sits in
// first_checks so ties resolve there.
var familyVerbs = map[SectionType]map[string]struct{}{
	SectionFirstChecks: {
		"check": {}, "verify": {}, "review": {}, "monitor": {}, "inspect": {},
		"examine": {}, "diagnose": {}, "watch": {}, "measure": {}, "collect": {},
		"compare": {}, "capture": {},
	},
	SectionFix: {
		"restart": {}, "restore": {}, "clear": {}, "flush": {}, "reset": {},
		"scale": {}, "rollback": {}, "increase": {}, "decrease": {}, "reduce": {},
		"set": {}, "configure": {}, "tune": {}, "adjust": {}, "replace": {},
		"remove": {}, "deploy": {}, "reload": {}, "switch": {}, "cap": {},
		"raise": {}, "drain": {}, "throttle": {}, "rotate": {}, "kill": {},
	},
	SectionValidate: {
		"validate": {}, "confirm": {}, "test": {}, "ensure": {}, "rerun": {},
	},
}

// answerFamilies are the three families an actionable bullet can land in,
// in tie-breaking order.
var answerFamilies = []SectionType{SectionFirstChecks, SectionFix, SectionValidate}

// ClassifyAction assigns an actionable bullet to first_checks, fix, or
// validate from its verb and surrounding text. Used only when the source
// chunk's own section type is unknown or background; ties default to
// first_checks.
func ClassifyAction(verb, text string) SectionType {
	lower := strings.ToLower(text)
	for _, sectionType := range answerFamilies {
		if _, ok := familyVerbs[sectionType][verb]; ok {
			return sectionType
		}
		for _, family := range sectionFamilies {
			if family.Type != sectionType {
				continue
			}
			for _, keyword := range family.Keywords {
				if strings.Contains(lower, keyword) {
					return sectionType
				}
			}
		}
	}
	return SectionFirstChecks
}

// IntentHint expands a query with related domain terms when any trigger
// appears in it.
type IntentHint struct {
	Name     string
	Triggers []string
	Related  []string
}

// IntentHints returns the ordered query-rewriting hint table. Multiple
// families may fire for one query; expansion never recurses.
func IntentHints() []IntentHint {
	return intentHints
}

var intentHints = []IntentHint{
	{Name: "cpu", Triggers: []string{"cpu", "processor", "load average"}, Related: []string{"performance", "monitoring", "metrics"}},
	{Name: "latency", Triggers: []string{"latency", "slow", "delay", "response time"}, Related: []string{"response time", "performance", "bottleneck"}},
	{Name: "cache", Triggers: []string{"cache", "redis", "memcached"}, Related: []string{"hit rate", "eviction", "performance"}},
	{Name: "queue", Triggers: []string{"queue", "backlog", "dlq", "dead letter"}, Related: []string{"backlog", "processing", "throughput"}},
	{Name: "pool", Triggers: []string{"pool", "connection", "worker"}, Related: []string{"resources", "scalability", "saturation"}},
	{Name: "memory", Triggers: []string{"memory", "ram", "oom", "swap"}, Related: []string{"allocation", "leak", "usage"}},
	{Name: "disk", Triggers: []string{"disk", "storage", "volume"}, Related: []string{"io", "space", "throughput"}},
	{Name: "network", Triggers: []string{"network", "bandwidth", "packet"}, Related: []string{"connectivity", "timeout", "drops"}},
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "has": {}, "have": {},
	"in": {}, "is": {}, "it": {}, "of": {}, "on": {}, "or": {}, "the": {},
	"to": {}, "was": {}, "were": {}, "with": {}, "this": {}, "that": {},
	"what": {}, "why": {}, "how": {}, "when": {},
}

// IsStopword reports whether a lowercase token carries no lexical signal.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
