// Package ingest turns raw document text into section-enriched chunks and
// persists them to the corpus store and the vector index.
package ingest

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"runbookai/internal/sectionizer"
	"runbookai/internal/storage"
)

const (
	minChunkRunes = 50
	maxChunkRunes = 700 // targets ~450 tokens for a 512-token embedding model
)

// chunkNamespace scopes the deterministic chunk IDs. IDs are UUIDv5 over
// filename, section path, position, and text, so re-ingesting unchanged
// content produces identical IDs.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("runbookai/chunk"))

// Processor converts one document into chunks with section metadata.
type Processor struct{}

// NewProcessor creates a document processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// Process sectionizes content and builds chunks. Each section yields one or
// more chunks depending on the size constraints; every chunk inherits the
// section's type, path, and content stats. Never fails: heading-less text
// becomes a single background section.
func (p *Processor) Process(documentID, filename, content string) []*storage.Chunk {
	sections := sectionizer.DetectSections(content)
	lineOffsets := buildLineOffsets(content)

	var chunks []*storage.Chunk
	for _, section := range sections {
		body := strings.TrimSpace(section.Content)
		if body == "" {
			continue
		}
		sectionStart := lineOffsets[section.StartLine]

		for _, piece := range splitBySize(body) {
			stats := sectionizer.AnalyzeContent(piece.text)
			start := sectionStart + piece.offset
			chunk := &storage.Chunk{
				DocumentID:  documentID,
				Filename:    filename,
				Text:        piece.text,
				StartOffset: start,
				EndOffset:   start + len(piece.text),
				SectionType: string(section.Type),
				SectionPath: section.HPath,
				HasCommands: stats.HasCommands(),
				HasMetrics:  stats.HasMetrics(),
				BulletCount: stats.Bullets,
			}
			chunk.ID = chunkID(filename, section.HPath, start, piece.text)
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// chunkID derives a stable UUID from content and position.
func chunkID(filename, sectionPath string, start int, text string) string {
	var b strings.Builder
	b.WriteString(filename)
	b.WriteByte('|')
	b.WriteString(sectionPath)
	b.WriteByte('|')
	b.WriteString(strings.TrimSpace(text))
	b.WriteByte('|')
	for start > 0 {
		b.WriteByte(byte('0' + start%10))
		start /= 10
	}
	return uuid.NewSHA1(chunkNamespace, []byte(b.String())).String()
}

// buildLineOffsets returns the byte offset of each line start.
func buildLineOffsets(content string) []int {
	offsets := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

type piece struct {
	text   string
	offset int // byte offset within the section body
}

// splitBySize splits an oversized section body, preferring paragraph then
// line then sentence boundaries. Bodies under the limit pass through whole;
// tiny trailing fragments merge backward rather than standing alone.
func splitBySize(body string) []piece {
	if utf8.RuneCountInString(body) <= maxChunkRunes {
		return []piece{{text: body}}
	}

	runes := []rune(body)
	var pieces []piece
	start := 0
	byteOffset := 0

	for start < len(runes) {
		end := start + maxChunkRunes
		if end >= len(runes) {
			pieces = append(pieces, piece{text: string(runes[start:]), offset: byteOffset})
			break
		}

		window := string(runes[start:end])
		cut := len(window)
		if i := strings.LastIndex(window, "\n\n"); i > 0 {
			cut = i + 2
		} else if i := strings.LastIndex(window, "\n"); i > 0 {
			cut = i + 1
		} else if i := strings.LastIndex(window, ". "); i > 0 {
			cut = i + 2
		}

		pieces = append(pieces, piece{text: window[:cut], offset: byteOffset})
		byteOffset += cut
		start += utf8.RuneCountInString(window[:cut])
	}

	// Merge a trailing fragment too small to stand on its own.
	if n := len(pieces); n > 1 && utf8.RuneCountInString(pieces[n-1].text) < minChunkRunes {
		pieces[n-2].text += pieces[n-1].text
		pieces = pieces[:n-1]
	}
	return pieces
}
