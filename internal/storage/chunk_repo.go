package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks runbookai/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"
)

// ChunkStore is the read/write corpus access interface. The retrieval engine
// and planner only use GetByID and ListAll; ingestion uses the rest.
type ChunkStore interface {
	// Insert inserts a single chunk. The chunk ID must be set.
	Insert(ctx context.Context, chunk *Chunk) error
	// DeleteByDocument deletes all chunks for a document.
	DeleteByDocument(ctx context.Context, documentID string) error
	// ListIDsByDocument returns chunk IDs for a document ordered by offset.
	ListIDsByDocument(ctx context.Context, documentID string) ([]string, error)
	// GetByID gets a chunk by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*Chunk, error)
	// ListAll returns every chunk in the corpus, ordered by filename and
	// offset. Used for lexical scoring and candidate pooling.
	ListAll(ctx context.Context) ([]*Chunk, error)
}

// ChunkRepo implements ChunkStore on SQLite.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

const chunkColumns = `id, document_id, filename, text, start_offset, end_offset,
	section_type, section_path, has_commands, has_metrics, bullet_count`

// Insert inserts a single chunk.
func (r *ChunkRepo) Insert(ctx context.Context, chunk *Chunk) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chunks (`+chunkColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		chunk.ID, chunk.DocumentID, chunk.Filename, chunk.Text,
		chunk.StartOffset, chunk.EndOffset, chunk.SectionType, chunk.SectionPath,
		chunk.HasCommands, chunk.HasMetrics, chunk.BulletCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// DeleteByDocument deletes all chunks for a document. Used when re-ingesting
// a changed document before inserting the new chunks.
func (r *ChunkRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("failed to delete chunks by document: %w", err)
	}
	return nil
}

// ListIDsByDocument returns all chunk IDs for a document ordered by offset.
// Returns an empty slice if no chunks exist (not an error).
func (r *ChunkRepo) ListIDsByDocument(ctx context.Context, documentID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM chunks WHERE document_id = ? ORDER BY start_offset",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chunk ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
func (r *ChunkRepo) GetByID(ctx context.Context, id string) (*Chunk, error) {
	var chunk Chunk
	err := r.db.QueryRowContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE id = ?`, id,
	).Scan(
		&chunk.ID, &chunk.DocumentID, &chunk.Filename, &chunk.Text,
		&chunk.StartOffset, &chunk.EndOffset, &chunk.SectionType, &chunk.SectionPath,
		&chunk.HasCommands, &chunk.HasMetrics, &chunk.BulletCount,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk: %w", err)
	}

	return &chunk, nil
}

// ListAll returns every chunk ordered by filename then offset.
func (r *ChunkRepo) ListAll(ctx context.Context) ([]*Chunk, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks ORDER BY filename, start_offset`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var chunks []*Chunk
	for rows.Next() {
		var chunk Chunk
		if err := rows.Scan(
			&chunk.ID, &chunk.DocumentID, &chunk.Filename, &chunk.Text,
			&chunk.StartOffset, &chunk.EndOffset, &chunk.SectionType, &chunk.SectionPath,
			&chunk.HasCommands, &chunk.HasMetrics, &chunk.BulletCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, &chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return chunks, nil
}
