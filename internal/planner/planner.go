package planner

import (
	"sort"

	"runbookai/internal/retrieval"
	"runbookai/internal/taxonomy"
)

// Planner builds answer plans from ranked evidence. Stateless and
// deterministic: the same question and results always produce the same plan.
type Planner struct{}

// New creates a planner.
func New() *Planner {
	return &Planner{}
}

// BuildPlan extracts, classifies, and selects bullets from the ranked
// results, then attaches the why explanation and source citations. Zero
// extractable bullets still yields a plan; rejecting it is the quality
// gate's call.
func (p *Planner) BuildPlan(question string, results []retrieval.Result) *Plan {
	var pool []Bullet
	for _, result := range results {
		pool = append(pool, extractBullets(result)...)
	}
	pool = dedupeBullets(pool)

	plan := &Plan{
		FirstChecks: selectSection(pool, taxonomy.SectionFirstChecks, maxFirstChecks),
		Fix:         selectSection(pool, taxonomy.SectionFix, maxFix),
		Validate:    selectSection(pool, taxonomy.SectionValidate, maxValidate),
	}

	used := make(map[string]struct{})
	var refs []sourceRef
	for _, bullet := range plan.Bullets() {
		used[bullet.ChunkID] = struct{}{}
		refs = append(refs, sourceRef{filename: bullet.Filename, chunkID: bullet.ChunkID})
	}

	why, contributors := explain(question, results, used)
	plan.Why = why
	for _, result := range contributors {
		refs = append(refs, sourceRef{filename: result.Chunk.Filename, chunkID: result.Chunk.ID})
	}

	plan.Sources = buildSources(refs)
	if len(plan.Sources) == 0 {
		// Nothing extractable contributed a citation; cite the retrieved
		// evidence itself so the caller can still see what was consulted.
		var fallback []sourceRef
		for _, result := range results {
			fallback = append(fallback, sourceRef{filename: result.Chunk.Filename, chunkID: result.Chunk.ID})
		}
		plan.Sources = buildSources(fallback)
	}
	return plan
}

// dedupeBullets drops bullets whose normalized text repeats, keeping the
// highest-scoring occurrence.
func dedupeBullets(pool []Bullet) []Bullet {
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})

	seen := make(map[string]struct{}, len(pool))
	out := pool[:0]
	for _, bullet := range pool {
		key := normalizeText(bullet.Text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, bullet)
	}
	return out
}

// selectSection takes the top bullets of one section, up to its cap. The
// pool is already score-ordered and deduplicated.
func selectSection(pool []Bullet, section taxonomy.SectionType, limit int) []Bullet {
	var out []Bullet
	for _, bullet := range pool {
		if bullet.Section != section {
			continue
		}
		out = append(out, bullet)
		if len(out) == limit {
			break
		}
	}
	return out
}
