// Package jsonlog provides a content source over a directory of structured
// JSON log files. Documents are versioned by file mtime; entries accumulate
// into chunks per the shared chunking policy.
package jsonlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/semsync/internal/core/domain"
	"github.com/custodia-labs/semsync/internal/core/ports/driven"
	"github.com/custodia-labs/semsync/internal/sources"
	"github.com/custodia-labs/semsync/internal/sources/chunker"
)

// Ensure Source implements the interface.
var _ driven.ContentSource = (*Source)(nil)

// Source reads JSON log files from one directory.
type Source struct {
	dir      string
	sourceID string
	workers  int
}

// Option configures the source.
type Option func(*Source)

// WithWorkers bounds per-document embedding concurrency.
func WithWorkers(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New creates a JSON log source over dir.
func New(dir string, opts ...Option) *Source {
	dir = filepath.Clean(dir)
	s := &Source{
		dir:      dir,
		sourceID: "jsonlog:" + dir,
		workers:  chunker.DefaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SourceID returns the stable identity of this source instance.
// The directory path is part of the identity so two instances over
// different directories partition the ledger separately.
func (s *Source) SourceID() string {
	return s.sourceID
}

// WatchPath returns the directory to watch for changes.
func (s *Source) WatchPath() string {
	return s.dir
}

// Diff returns new and modified log files, versioned by mtime.
func (s *Source) Diff(_ context.Context, existing []domain.Document) ([]domain.Document, error) {
	return sources.DiffDir(s.dir, ".json", s.sourceID, existing)
}

// FindDeleted returns ledger documents whose files are gone.
func (s *Source) FindDeleted(_ context.Context, existing []domain.Document) ([]domain.Document, error) {
	return sources.FindDeletedDir(s.dir, existing)
}

// Materialize reads the log file, accumulates its entries into chunks and
// embeds each chunk.
func (s *Source) Materialize(ctx context.Context, embedder driven.EmbeddingService, documentID string) ([]domain.IndexChunk, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, documentID))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", documentID, err)
	}

	entries, err := parseEntries(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", documentID, err)
	}

	b := chunker.NewBuilder(documentID, documentID)
	for _, entry := range entries {
		b.Add(entry)
	}
	chunks := b.Chunks()

	if err := chunker.EmbedAll(ctx, embedder, chunks, s.workers); err != nil {
		return nil, err
	}
	return chunks, nil
}

// parseEntries decodes a log file into one compact JSON string per entry.
// Both a top-level JSON array and JSON-lines layouts are accepted.
func parseEntries(data []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var raws []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedContent, err)
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		for {
			var raw json.RawMessage
			err := dec.Decode(&raw)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrMalformedContent, err)
			}
			raws = append(raws, raw)
		}
	}

	entries := make([]string, 0, len(raws))
	for _, raw := range raws {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedContent, err)
		}
		entries = append(entries, buf.String())
	}
	return entries, nil
}
