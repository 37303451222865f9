package retrieval

import (
	"math"

	"runbookai/internal/storage"
)

// Okapi BM25 parameters. k1 controls term-frequency saturation, b controls
// document-length normalization.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// bm25Index is a per-query lexical index over the corpus chunks. The corpus
// is small enough (operational runbooks, not the open web) that rebuilding
// the index on each query is cheaper than keeping it consistent with
// ingestion.
type bm25Index struct {
	chunks    []*storage.Chunk
	termFreqs []map[string]int
	docLens   []int
	avgDocLen float64
	docFreq   map[string]int
}

// newBM25Index builds the index from the corpus chunks.
func newBM25Index(chunks []*storage.Chunk) *bm25Index {
	idx := &bm25Index{
		chunks:    chunks,
		termFreqs: make([]map[string]int, len(chunks)),
		docLens:   make([]int, len(chunks)),
		docFreq:   make(map[string]int),
	}

	var totalLen int
	for i, chunk := range chunks {
		tokens := tokenize(chunk.Text)
		freq := make(map[string]int, len(tokens))
		for _, token := range tokens {
			freq[token]++
		}
		idx.termFreqs[i] = freq
		idx.docLens[i] = len(tokens)
		totalLen += len(tokens)

		for term := range freq {
			idx.docFreq[term]++
		}
	}

	if len(chunks) > 0 {
		idx.avgDocLen = float64(totalLen) / float64(len(chunks))
	}
	return idx
}

// score computes the raw BM25 score of chunk i for the query tokens.
func (idx *bm25Index) score(i int, queryTokens []string) float64 {
	if idx.docLens[i] == 0 || idx.avgDocLen == 0 {
		return 0
	}

	n := float64(len(idx.chunks))
	lenNorm := 1 - bm25B + bm25B*float64(idx.docLens[i])/idx.avgDocLen

	var total float64
	for _, term := range queryTokens {
		tf := float64(idx.termFreqs[i][term])
		if tf == 0 {
			continue
		}
		df := float64(idx.docFreq[term])
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		total += idf * (tf * (bm25K1 + 1)) / (tf + bm25K1*lenNorm)
	}
	return total
}

// scoreAll returns raw BM25 scores for every chunk against the query.
func (idx *bm25Index) scoreAll(query string) []float64 {
	queryTokens := contentTokens(query)
	scores := make([]float64, len(idx.chunks))
	if len(queryTokens) == 0 {
		return scores
	}
	for i := range idx.chunks {
		scores[i] = idx.score(i, queryTokens)
	}
	return scores
}
