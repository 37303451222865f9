package ingest

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"runbookai/internal/contextutil"
	"runbookai/internal/sectionizer"
	"runbookai/internal/storage"
	"runbookai/internal/vectorstore"
)

// maxParallelDocs bounds concurrent document ingestion in IngestAll.
const maxParallelDocs = 4

// DocumentInput is one raw document submitted for ingestion.
type DocumentInput struct {
	Filename string `json:"filename" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

// Result summarizes one document's ingestion.
type Result struct {
	DocumentID     string          `json:"document_id"`
	Filename       string          `json:"filename"`
	Title          string          `json:"title"`
	Skipped        bool            `json:"skipped"`
	ChunkCount     int             `json:"chunk_count"`
	SectionsByType map[string]int  `json:"sections_by_type,omitempty"`
	ContentStats   *ContentSummary `json:"content_stats,omitempty"`
}

// ContentSummary aggregates per-chunk content stats for one document.
type ContentSummary struct {
	Bullets            int `json:"bullets"`
	CodeBlocks         int `json:"code_blocks"`
	Links              int `json:"links"`
	ChunksWithCommands int `json:"chunks_with_commands"`
	ChunksWithMetrics  int `json:"chunks_with_metrics"`
}

// Pipeline orchestrates ingestion: sectionize, chunk, persist to SQLite,
// embed, and upsert to the vector index.
type Pipeline struct {
	documentRepo storage.DocumentStore
	chunkRepo    storage.ChunkStore
	embedder     vectorstore.Embedder
	vectorStore  vectorstore.VectorStore
	collection   string
	processor    *Processor
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	documentRepo storage.DocumentStore,
	chunkRepo storage.ChunkStore,
	embedder vectorstore.Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
) *Pipeline {
	return &Pipeline{
		documentRepo: documentRepo,
		chunkRepo:    chunkRepo,
		embedder:     embedder,
		vectorStore:  vectorStore,
		collection:   collection,
		processor:    NewProcessor(),
	}
}

// IngestDocument ingests a single document. Unchanged content (same SHA-256
// hash as the stored record) is skipped. Changed content replaces the old
// chunks in both SQLite and the vector index. Embedding or vector upsert
// failure does not fail the call: the chunks stay queryable through lexical
// ranking, and the degradation is logged.
//
// Callers must serialize ingestion per filename; concurrent ingestion of
// distinct documents is fine.
func (p *Pipeline) IngestDocument(ctx context.Context, input DocumentInput) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if input.Filename == "" {
		return nil, fmt.Errorf("filename is required")
	}

	content := []byte(input.Content)
	hashHex := fmt.Sprintf("%x", sha256.Sum256(content))

	existing, err := p.documentRepo.GetByFilename(ctx, input.Filename)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing document: %w", err)
	}

	if existing != nil && existing.Hash == hashHex {
		logger.DebugContext(ctx, "skipping unchanged document", "filename", input.Filename, "hash", hashHex)
		return &Result{
			DocumentID: existing.ID,
			Filename:   input.Filename,
			Title:      existing.Title,
			Skipped:    true,
		}, nil
	}

	documentID := uuid.New().String()
	if existing != nil {
		documentID = existing.ID
	}

	title := ExtractTitle(content, input.Filename)
	chunks := p.processor.Process(documentID, input.Filename, input.Content)

	doc := &storage.Document{
		ID:       documentID,
		Filename: input.Filename,
		Title:    title,
		Hash:     hashHex,
	}
	if err := p.documentRepo.Upsert(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to upsert document: %w", err)
	}

	if existing != nil {
		oldIDs, err := p.chunkRepo.ListIDsByDocument(ctx, documentID)
		if err != nil {
			return nil, fmt.Errorf("failed to list old chunk IDs: %w", err)
		}
		if len(oldIDs) > 0 {
			if err := p.vectorStore.Delete(ctx, p.collection, oldIDs); err != nil {
				logger.WarnContext(ctx, "failed to delete old vectors", "filename", input.Filename, "count", len(oldIDs), "error", err)
			}
			if err := p.chunkRepo.DeleteByDocument(ctx, documentID); err != nil {
				return nil, fmt.Errorf("failed to delete old chunks: %w", err)
			}
		}
	}

	sectionsByType := make(map[string]int)
	summary := &ContentSummary{}
	for _, chunk := range chunks {
		if err := p.chunkRepo.Insert(ctx, chunk); err != nil {
			return nil, fmt.Errorf("failed to insert chunk: %w", err)
		}
		sectionsByType[chunk.SectionType]++

		stats := sectionizer.AnalyzeContent(chunk.Text)
		summary.Bullets += stats.Bullets
		summary.CodeBlocks += stats.CodeBlocks
		summary.Links += stats.Links
		if chunk.HasCommands {
			summary.ChunksWithCommands++
		}
		if chunk.HasMetrics {
			summary.ChunksWithMetrics++
		}
	}

	if len(chunks) > 0 {
		if err := p.indexVectors(ctx, chunks); err != nil {
			logger.WarnContext(ctx, "vector indexing failed, document is lexical-only", "filename", input.Filename, "error", err)
		}
	} else {
		logger.WarnContext(ctx, "no chunks generated", "filename", input.Filename)
	}

	logger.InfoContext(ctx, "ingested document", "filename", input.Filename, "title", title, "chunks", len(chunks))
	return &Result{
		DocumentID:     documentID,
		Filename:       input.Filename,
		Title:          title,
		ChunkCount:     len(chunks),
		SectionsByType: sectionsByType,
		ContentStats:   summary,
	}, nil
}

// indexVectors embeds chunk texts and upserts the points.
func (p *Pipeline) indexVectors(ctx context.Context, chunks []*storage.Chunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = vectorstore.Point{
			ID:  chunk.ID,
			Vec: embeddings[i],
			Meta: map[string]any{
				"document_id":  chunk.DocumentID,
				"filename":     chunk.Filename,
				"section_type": chunk.SectionType,
				"section_path": chunk.SectionPath,
			},
		}
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}
	return nil
}

// IngestAll ingests a batch of documents, up to maxParallelDocs at a time.
// Filenames must be unique within the batch. Per-document failures are
// collected, not fatal; the returned results align with successful inputs.
func (p *Pipeline) IngestAll(ctx context.Context, inputs []DocumentInput) ([]*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "starting batch ingestion", "documents", len(inputs))

	results := make([]*Result, len(inputs))
	errs := make([]error, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDocs)
	for i, input := range inputs {
		g.Go(func() error {
			result, err := p.IngestDocument(gctx, input)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", input.Filename, err)
				logger.ErrorContext(gctx, "failed to ingest document", "filename", input.Filename, "error", err)
				return nil
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	var ok []*Result
	for _, r := range results {
		if r != nil {
			ok = append(ok, r)
		}
	}

	var failed int
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	logger.InfoContext(ctx, "batch ingestion completed", "documents", len(inputs), "success", len(ok), "errors", failed)

	if failed > 0 {
		return ok, fmt.Errorf("ingestion completed with %d errors", failed)
	}
	return ok, nil
}
