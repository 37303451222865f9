// Package planner turns ranked chunks into a structured answer plan:
// classified actionable bullets, a why explanation, and deduplicated source
// citations. It extracts from evidence only and never generates text.
package planner

import "runbookai/internal/taxonomy"

// Bullet is one actionable step lifted from a chunk.
type Bullet struct {
	Text     string
	Verb     string
	Section  taxonomy.SectionType
	Score    float64
	Filename string // raw source filename
	ChunkID  string
}

// Plan is the structured answer before composition. A plan always exists,
// even with zero bullets; the quality gate decides whether it ships.
type Plan struct {
	FirstChecks []Bullet
	Fix         []Bullet
	Validate    []Bullet
	Why         []string // explanation sentences, in evidence order
	Sources     []string // "filename#chunk_id", normalized, deduplicated
}

// Bullets returns every selected bullet across the three answer sections.
func (p *Plan) Bullets() []Bullet {
	out := make([]Bullet, 0, len(p.FirstChecks)+len(p.Fix)+len(p.Validate))
	out = append(out, p.FirstChecks...)
	out = append(out, p.Fix...)
	out = append(out, p.Validate...)
	return out
}

// Selection bounds per answer section. Minimums are targets the quality gate
// enforces downstream; maximums are hard caps applied here.
const (
	minFirstChecks = 3
	maxFirstChecks = 5
	minFix         = 2
	maxFix         = 5
	minValidate    = 2
	maxValidate    = 4
)

// Bullet scoring bonuses on top of the chunk's combined retrieval score.
const (
	bonusCommands   = 0.1
	bonusMetrics    = 0.1
	bonusLongBullet = 0.05
	longBulletRunes = 50
)
