package taxonomy

import "testing"

func TestClassifyTitle(t *testing.T) {
	tests := []struct {
		title string
		want  SectionType
	}{
		{"First Checks", SectionFirstChecks},
		{"QUICK CHECK", SectionFirstChecks},
		{"Immediate Actions", SectionFirstChecks},
		{"Triage", SectionFirstChecks},
		{"Fix", SectionFix},
		{"Remediation Steps", SectionFix},
		{"How to Fix the Cache", SectionFix},
		{"Validate", SectionValidate},
		{"Verification", SectionValidate},
		// "fix" outranks the validate family even in "post-fix".
		{"Post-Fix Checks", SectionFix},
		{"Escalation Policy", SectionPolicy},
		{"SLA Requirements", SectionPolicy},
		{"Gotchas", SectionGotchas},
		{"Common Mistakes", SectionGotchas},
		{"Known Issues", SectionGotchas},
		{"Architecture Overview", SectionBackground},
		{"", SectionBackground},
	}

	for _, tt := range tests {
		if got := ClassifyTitle(tt.title); got != tt.want {
			t.Errorf("ClassifyTitle(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

// A title matching several families lands in the earliest one.
func TestClassifyTitlePrecedence(t *testing.T) {
	tests := []struct {
		title string
		want  SectionType
	}{
		// "first check" beats "fix".
		{"First Checks Before the Fix", SectionFirstChecks},
		// "fix" beats "validate".
		{"Fix and Validate", SectionFix},
		// "validate" beats "policy".
		{"Validation Policy", SectionValidate},
		// "policy" beats "gotcha".
		{"Policy Gotchas", SectionPolicy},
	}

	for _, tt := range tests {
		if got := ClassifyTitle(tt.title); got != tt.want {
			t.Errorf("ClassifyTitle(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestLeadingVerb(t *testing.T) {
	tests := []struct {
		text     string
		wantVerb string
		wantOK   bool
	}{
		{"check the queue depth", "check", true},
		{"Restart the worker pool", "restart", true},
		{"**verify** replication lag", "verify", true},
		{"`flush` the cache", "flush", true},
		{"Scale: add two replicas", "scale", true},
		{"the queue keeps growing", "", false},
		{"checking things casually", "", false},
		{"", "", false},
		{"   ", "", false},
	}

	for _, tt := range tests {
		verb, ok := LeadingVerb(tt.text)
		if ok != tt.wantOK || verb != tt.wantVerb {
			t.Errorf("LeadingVerb(%q) = (%q, %v), want (%q, %v)", tt.text, verb, ok, tt.wantVerb, tt.wantOK)
		}
	}
}

func TestClassifyAction(t *testing.T) {
	tests := []struct {
		name string
		verb string
		text string
		want SectionType
	}{
		{"check verb", "check", "check the queue depth", SectionFirstChecks},
		{"verify ties to first checks", "verify", "verify replication lag", SectionFirstChecks},
		{"restart verb", "restart", "restart the worker pool", SectionFix},
		{"scale verb", "scale", "scale out to four replicas", SectionFix},
		{"confirm verb", "confirm", "confirm latency recovered", SectionValidate},
		{"test verb", "test", "test the endpoint again", SectionValidate},
		{"unknown verb falls back to keywords", "run", "run the remediation playbook", SectionFix},
		{"unknown verb and text defaults to first checks", "run", "run the daily report", SectionFirstChecks},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyAction(tt.verb, tt.text); got != tt.want {
				t.Errorf("ClassifyAction(%q, %q) = %q, want %q", tt.verb, tt.text, got, tt.want)
			}
		})
	}
}

func TestIsStopword(t *testing.T) {
	for _, token := range []string{"the", "and", "with", "how"} {
		if !IsStopword(token) {
			t.Errorf("IsStopword(%q) = false, want true", token)
		}
	}
	for _, token := range []string{"cpu", "latency", "restart"} {
		if IsStopword(token) {
			t.Errorf("IsStopword(%q) = true, want false", token)
		}
	}
}
