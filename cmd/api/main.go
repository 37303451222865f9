package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"time"

	"runbookai/internal/config"
	"runbookai/internal/gate"
	"runbookai/internal/http"
	"runbookai/internal/ingest"
	"runbookai/internal/llm"
	"runbookai/internal/planner"
	"runbookai/internal/rag"
	"runbookai/internal/retrieval"
	"runbookai/internal/storage"
	"runbookai/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(newLogHandler(cfg))
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel, "format", cfg.LogFormat)

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	documentRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	ctx := context.Background()

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	pipeline := ingest.NewPipeline(documentRepo, chunkRepo, embedder, vectorStore, cfg.QdrantCollection)

	backend := vectorstore.NewEmbeddingBackend(
		embedder,
		vectorStore,
		cfg.QdrantCollection,
		time.Duration(cfg.Retrieval.SearchTimeoutSec)*time.Second,
	)

	// No cross-encoder reranker is deployed; the engine reports the
	// capability as absent.
	retriever := retrieval.NewEngine(chunkRepo, backend, nil, retrieval.Options{
		TopK:           cfg.Retrieval.TopK,
		VectorWeight:   cfg.Retrieval.VectorWeight,
		LexicalWeight:  cfg.Retrieval.LexicalWeight,
		Lambda:         cfg.Retrieval.Lambda,
		RerankDepth:    cfg.Retrieval.RerankDepth,
		DiversityFloor: cfg.Retrieval.DiversityFloor,
	})

	ragEngine := rag.NewEngine(retriever, planner.New(), gate.New())
	slog.Info("Answer pipeline initialized", "reranker", retriever.HasReranker())

	router := http.NewRouter(&http.Deps{
		RAGEngine:    ragEngine,
		Pipeline:     pipeline,
		VectorStore:  vectorStore,
		DocumentRepo: documentRepo,
		Collection:   cfg.QdrantCollection,
	})

	addr := ":" + cfg.APIPort
	slog.Info("Starting server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// newLogHandler builds the slog handler from config.
func newLogHandler(cfg *config.Config) slog.Handler {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.NewTextHandler(os.Stdout, opts)
}
