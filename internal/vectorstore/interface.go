package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks runbookai/internal/vectorstore VectorStore,VectorBackend,Embedder

import "context"

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// CollectionExists checks if a collection exists. Used by health checks.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}

// Neighbor is one ranked (chunk, raw similarity) pair from the backend.
type Neighbor struct {
	ChunkID    string
	Similarity float32
}

// Embedder turns texts into embedding vectors, one per input text.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorBackend is the narrow nearest-neighbor interface the retrieval
// engine consumes. Implementations must honor the context deadline; the
// engine treats any error (including timeout) as backend unavailability and
// falls back to lexical-only ranking.
type VectorBackend interface {
	Nearest(ctx context.Context, queryText string, limit int) ([]Neighbor, error)
}
