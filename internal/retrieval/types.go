// Package retrieval ranks corpus chunks for a question. It fuses vector
// similarity with BM25 lexical relevance, optionally reranks the head of the
// pool, and selects a diverse result set with MMR plus a distinct-file floor.
package retrieval

import "runbookai/internal/storage"

// Result is one ranked chunk. VectorScore and LexicalScore are the min-max
// normalized per-query channel scores; CombinedScore is their weighted
// fusion. In lexical-only degraded mode VectorScore is 0 and CombinedScore
// equals LexicalScore.
type Result struct {
	Chunk         *storage.Chunk
	VectorScore   float64
	LexicalScore  float64
	CombinedScore float64
}

// Options controls ranking. Zero values fall back to the defaults below.
type Options struct {
	TopK           int     // final result count
	VectorWeight   float64 // fusion weight for the vector channel
	LexicalWeight  float64 // fusion weight for the lexical channel
	Lambda         float64 // MMR relevance/diversity trade-off
	RerankDepth    int     // how many head candidates a reranker rescores
	DiversityFloor int     // minimum distinct source files in the result
}

const (
	defaultTopK           = 8
	defaultVectorWeight   = 0.6
	defaultLexicalWeight  = 0.4
	defaultLambda         = 0.7
	defaultRerankDepth    = 20
	defaultDiversityFloor = 3
)

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = defaultTopK
	}
	if o.VectorWeight <= 0 && o.LexicalWeight <= 0 {
		o.VectorWeight = defaultVectorWeight
		o.LexicalWeight = defaultLexicalWeight
	}
	if o.Lambda <= 0 {
		o.Lambda = defaultLambda
	}
	if o.RerankDepth <= 0 {
		o.RerankDepth = defaultRerankDepth
	}
	if o.DiversityFloor <= 0 {
		o.DiversityFloor = defaultDiversityFloor
	}
	return o
}
