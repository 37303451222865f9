package retrieval

import (
	"context"
	"fmt"
	"sort"

	"runbookai/internal/contextutil"
	"runbookai/internal/storage"
	"runbookai/internal/vectorstore"
)

// Engine ranks corpus chunks for a question.
type Engine struct {
	chunkRepo storage.ChunkStore
	backend   vectorstore.VectorBackend
	reranker  Reranker
	opts      Options
}

// NewEngine creates a retrieval engine. backend may be nil to run
// lexical-only; reranker may be nil when no cross-encoder is deployed.
func NewEngine(chunkRepo storage.ChunkStore, backend vectorstore.VectorBackend, reranker Reranker, opts Options) *Engine {
	return &Engine{
		chunkRepo: chunkRepo,
		backend:   backend,
		reranker:  reranker,
		opts:      opts.withDefaults(),
	}
}

// HasReranker reports whether a reranker is configured. Absence is a
// reportable capability state, not an error.
func (e *Engine) HasReranker() bool {
	return e.reranker != nil
}

// Retrieve returns up to TopK ranked, diversity-adjusted chunks for the
// question. degraded reports lexical-only mode: the vector backend was
// absent, errored, or timed out, and the combined score is the normalized
// lexical score alone. An empty corpus yields an empty result, not an error.
func (e *Engine) Retrieve(ctx context.Context, question string) (results []Result, degraded bool, err error) {
	logger := contextutil.LoggerFromContext(ctx)

	chunks, err := e.chunkRepo.ListAll(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load corpus: %w", err)
	}
	if len(chunks) == 0 {
		logger.DebugContext(ctx, "corpus is empty")
		return nil, false, nil
	}

	rewritten := RewriteQuery(question)
	if rewritten != question {
		logger.DebugContext(ctx, "rewrote query", "question", question, "rewritten", rewritten)
	}

	poolSize := e.opts.TopK * 2

	idx := newBM25Index(chunks)
	rawLexical := idx.scoreAll(rewritten)

	rawVector := make(map[string]float64)
	if e.backend == nil {
		degraded = true
	} else {
		neighbors, backendErr := e.backend.Nearest(ctx, rewritten, poolSize)
		if backendErr != nil {
			degraded = true
			logger.WarnContext(ctx, "vector backend unavailable, falling back to lexical-only ranking", "error", backendErr)
		} else {
			for _, n := range neighbors {
				rawVector[n.ChunkID] = float64(n.Similarity)
			}
		}
	}

	candidates := e.poolCandidates(chunks, rawLexical, rawVector, poolSize)
	if len(candidates) == 0 {
		return nil, degraded, nil
	}

	e.fuse(candidates, degraded)
	sortByCombined(candidates)

	if e.reranker != nil && !degraded {
		candidates = e.rerankHead(ctx, question, candidates)
	}

	selected := selectMMR(candidates, e.opts.TopK, e.opts.Lambda)
	selected = repairDiversityFloor(selected, candidates, e.opts.DiversityFloor)

	logger.DebugContext(ctx, "retrieval completed",
		"candidates", len(candidates), "selected", len(selected),
		"distinct_files", distinctFiles(selected), "degraded", degraded)
	return selected, degraded, nil
}

// poolCandidates unions the lexical top of the corpus with the vector
// neighbors. Chunks with no signal on either channel stay out of the pool.
func (e *Engine) poolCandidates(chunks []*storage.Chunk, rawLexical []float64, rawVector map[string]float64, poolSize int) []Result {
	byID := make(map[string]int, len(chunks))
	for i, chunk := range chunks {
		byID[chunk.ID] = i
	}

	lexOrder := make([]int, 0, len(chunks))
	for i, score := range rawLexical {
		if score > 0 {
			lexOrder = append(lexOrder, i)
		}
	}
	sort.SliceStable(lexOrder, func(a, b int) bool {
		return rawLexical[lexOrder[a]] > rawLexical[lexOrder[b]]
	})
	if len(lexOrder) > poolSize {
		lexOrder = lexOrder[:poolSize]
	}

	inPool := make(map[string]struct{})
	var pool []Result
	add := func(i int) {
		chunk := chunks[i]
		if _, ok := inPool[chunk.ID]; ok {
			return
		}
		inPool[chunk.ID] = struct{}{}
		pool = append(pool, Result{
			Chunk:        chunk,
			VectorScore:  rawVector[chunk.ID],
			LexicalScore: rawLexical[i],
		})
	}

	for _, i := range lexOrder {
		add(i)
	}
	for id := range rawVector {
		if i, ok := byID[id]; ok {
			add(i)
		}
		// Vector hits with no corpus row are stale index entries; skip them.
	}
	return pool
}

// fuse min-max normalizes each channel over the pool and combines them. In
// degraded mode the lexical channel carries the full weight.
func (e *Engine) fuse(pool []Result, degraded bool) {
	normalizeVector := minMax(pool, func(r Result) float64 { return r.VectorScore })
	normalizeLexical := minMax(pool, func(r Result) float64 { return r.LexicalScore })

	for i := range pool {
		pool[i].VectorScore = normalizeVector(pool[i].VectorScore)
		pool[i].LexicalScore = normalizeLexical(pool[i].LexicalScore)
		if degraded {
			pool[i].VectorScore = 0
			pool[i].CombinedScore = pool[i].LexicalScore
		} else {
			pool[i].CombinedScore = e.opts.VectorWeight*pool[i].VectorScore + e.opts.LexicalWeight*pool[i].LexicalScore
		}
	}
}

// minMax returns a normalizer mapping the observed range to [0, 1]. A
// constant channel maps to 1 when it carries signal and 0 when it is flat
// zero.
func minMax(pool []Result, value func(Result) float64) func(float64) float64 {
	if len(pool) == 0 {
		return func(v float64) float64 { return 0 }
	}
	lo, hi := value(pool[0]), value(pool[0])
	for _, r := range pool[1:] {
		v := value(r)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		if hi > 0 {
			return func(v float64) float64 { return 1 }
		}
		return func(v float64) float64 { return 0 }
	}
	span := hi - lo
	return func(v float64) float64 { return (v - lo) / span }
}

// rerankHead rescores the top RerankDepth candidates and re-sorts them in
// place; the tail keeps its fusion order. A reranker failure is logged and
// the fusion order stands.
func (e *Engine) rerankHead(ctx context.Context, question string, candidates []Result) []Result {
	logger := contextutil.LoggerFromContext(ctx)

	depth := e.opts.RerankDepth
	if depth > len(candidates) {
		depth = len(candidates)
	}

	head := make([]Result, depth)
	copy(head, candidates[:depth])

	rescored, err := e.reranker.Rescore(ctx, question, head)
	if err != nil {
		logger.WarnContext(ctx, "reranker failed, keeping fusion order", "error", err)
		return candidates
	}
	if len(rescored) != depth {
		logger.WarnContext(ctx, "reranker changed candidate count, keeping fusion order", "expected", depth, "got", len(rescored))
		return candidates
	}

	sortByCombined(rescored)
	return append(rescored, candidates[depth:]...)
}

// sortByCombined orders candidates by combined score descending, breaking
// ties on chunk ID for determinism.
func sortByCombined(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].CombinedScore != results[j].CombinedScore {
			return results[i].CombinedScore > results[j].CombinedScore
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
}
