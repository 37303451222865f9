package retrieval

import "context"

// Reranker rescores the head of a fused candidate list, typically with a
// cross-encoder service. Rescore receives candidates ordered by combined
// score and returns the same candidates with CombinedScore replaced; it must
// not add or drop entries. No implementation ships here: the engine runs
// without one and reports the capability as absent, never silently
// approximated.
type Reranker interface {
	Rescore(ctx context.Context, question string, candidates []Result) ([]Result, error)
}
