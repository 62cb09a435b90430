package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Document is one indexable unit owned by a content source: a file on disk,
// or a time-bucketed group of log lines from a query backend.
type Document struct {
	// ID is the source-local identity (a file name, or a derived key such
	// as "2024-03-14T09_app=api" for windowed log sources).
	ID string

	// SourceID identifies the owning source instance. It embeds enough of
	// the source configuration (e.g. the directory path) to disambiguate
	// two instances of the same source kind.
	SourceID string

	// Version is an opaque content-change token. Two documents with equal
	// (ID, SourceID) and equal Version are content-identical; any
	// difference triggers re-indexing. Derivation is source-specific:
	// filesystem sources use the file's modification time, windowed log
	// sources use a content hash.
	Version string

	// Records point at the chunks this document currently owns in the
	// vector index. The set is replaced as a whole on every re-index,
	// never patched in place.
	Records []Record

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested.
	UpdatedAt time.Time
}

// Record ties a document to one chunk key in the vector index. Records live
// in the ledger so superseded or deleted documents can have their index
// entries cascade-deleted by key.
type Record struct {
	// ID is the chunk ordinal within the document, starting at 1.
	ID int

	// DocumentID and DocumentSourceID reference the owning document.
	DocumentID       string
	DocumentSourceID string
}

// Key returns the index key this record points at.
func (r Record) Key() string {
	return ChunkKey(r.DocumentID, r.ID)
}

// RecordKeys returns the index keys currently owned by the document.
func (d *Document) RecordKeys() []string {
	keys := make([]string, 0, len(d.Records))
	for _, r := range d.Records {
		keys = append(keys, r.Key())
	}
	return keys
}

// IndexChunk is the unit embedded and stored in the vector index: one text
// span of a document plus its vector.
type IndexChunk struct {
	// Key is the globally unique index key, derived from the document ID
	// and the chunk ordinal via ChunkKey.
	Key string

	// SourceFileName is the originating file or stream name.
	SourceFileName string

	// Page is the page or sequence number within the document, starting
	// at 1 and increasing per chunk.
	Page int

	// Text is the chunk content that was embedded.
	Text string

	// Vector is the embedding of Text.
	Vector []float32
}

// ScoredChunk is a retrieval result: an index chunk plus its similarity
// score, higher is closer.
type ScoredChunk struct {
	IndexChunk
	Score float64
}

// ChunkKey derives the index key for one chunk of a document. The document
// ID is stripped of any file extension, so chunk 1 of "a.json" keys as
// "a_1". Windowed log document IDs carry no extension and pass through
// unchanged.
func ChunkKey(documentID string, ordinal int) string {
	base := strings.TrimSuffix(documentID, filepath.Ext(documentID))
	return fmt.Sprintf("%s_%d", base, ordinal)
}
