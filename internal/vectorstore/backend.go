package vectorstore

import (
	"context"
	"fmt"
	"time"
)

// EmbeddingBackend implements VectorBackend by embedding the query text and
// searching the vector store. Every call is bounded by searchTimeout so a
// stalled backend degrades the query to lexical-only ranking instead of
// hanging it.
type EmbeddingBackend struct {
	embedder      Embedder
	store         VectorStore
	collection    string
	searchTimeout time.Duration
}

// NewEmbeddingBackend creates a VectorBackend over an embeddings client and
// a vector store collection.
func NewEmbeddingBackend(embedder Embedder, store VectorStore, collection string, searchTimeout time.Duration) *EmbeddingBackend {
	if searchTimeout <= 0 {
		searchTimeout = 5 * time.Second
	}
	return &EmbeddingBackend{
		embedder:      embedder,
		store:         store,
		collection:    collection,
		searchTimeout: searchTimeout,
	}
}

// Nearest embeds queryText and returns up to limit ranked neighbors.
func (b *EmbeddingBackend) Nearest(ctx context.Context, queryText string, limit int) ([]Neighbor, error) {
	ctx, cancel := context.WithTimeout(ctx, b.searchTimeout)
	defer cancel()

	embeddings, err := b.embedder.EmbedTexts(ctx, []string{queryText})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	results, err := b.store.Search(ctx, b.collection, embeddings[0], limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search vector store: %w", err)
	}

	neighbors := make([]Neighbor, 0, len(results))
	for _, result := range results {
		neighbors = append(neighbors, Neighbor{
			ChunkID:    result.PointID,
			Similarity: result.Score,
		})
	}
	return neighbors, nil
}
