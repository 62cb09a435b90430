// Package chunker provides the shared chunking policy for log-style
// sources: successive entries accumulate into a chunk until an entry count
// or character budget is reached, then the chunk is flushed.
package chunker

import (
	"strings"

	"github.com/custodia-labs/semsync/internal/core/domain"
)

// Chunking policy shared by log-style sources.
const (
	// DefaultMaxEntries flushes a chunk once this many entries accumulate.
	DefaultMaxEntries = 10

	// DefaultMaxChars flushes a chunk once the joined text exceeds this
	// many characters.
	DefaultMaxChars = 1000
)

// Builder accumulates entry texts into index chunks for one document.
// Chunks are flushed when either DefaultMaxEntries entries accumulate or
// the newline-joined text exceeds DefaultMaxChars characters; a final
// partial chunk is always flushed. Page numbers increase per flushed
// chunk, starting at 1. Vectors are left empty; see EmbedAll.
type Builder struct {
	documentID string
	fileName   string
	maxEntries int
	maxChars   int

	entries []string
	page    int
	chunks  []domain.IndexChunk
}

// NewBuilder creates a builder for one document with the default policy.
func NewBuilder(documentID, fileName string) *Builder {
	return &Builder{
		documentID: documentID,
		fileName:   fileName,
		maxEntries: DefaultMaxEntries,
		maxChars:   DefaultMaxChars,
	}
}

// Add appends one entry, flushing the current chunk when the policy says so.
func (b *Builder) Add(text string) {
	b.entries = append(b.entries, text)
	if len(b.entries) >= b.maxEntries || len(strings.Join(b.entries, "\n")) > b.maxChars {
		b.flush()
	}
}

// Chunks flushes any partial chunk and returns the accumulated chunks.
func (b *Builder) Chunks() []domain.IndexChunk {
	b.flush()
	return b.chunks
}

func (b *Builder) flush() {
	if len(b.entries) == 0 {
		return
	}
	b.page++
	b.chunks = append(b.chunks, domain.IndexChunk{
		Key:            domain.ChunkKey(b.documentID, b.page),
		SourceFileName: b.fileName,
		Page:           b.page,
		Text:           strings.Join(b.entries, "\n"),
	})
	b.entries = b.entries[:0]
}
