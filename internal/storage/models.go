package storage

import "time"

// Document represents one ingested source document.
type Document struct {
	ID        string // UUID
	Filename  string
	Title     string
	Hash      string // SHA256 hex of raw content, used to skip unchanged re-ingestion
	UpdatedAt time.Time
}

// Chunk is a stored, position-addressable span of a document enriched with
// section metadata from the sectionizer. Immutable once written; the ID is
// derived from content and position so re-ingesting unchanged text is
// idempotent.
type Chunk struct {
	ID          string
	DocumentID  string
	Filename    string
	Text        string
	StartOffset int
	EndOffset   int
	SectionType string
	SectionPath string
	HasCommands bool
	HasMetrics  bool
	BulletCount int
}
