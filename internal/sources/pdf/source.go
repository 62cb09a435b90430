// Package pdf provides a content source over a directory of PDF files.
// Documents are versioned by file mtime; each PDF page becomes one chunk.
package pdf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/semsync/internal/core/domain"
	"github.com/custodia-labs/semsync/internal/core/ports/driven"
	"github.com/custodia-labs/semsync/internal/sources"
	"github.com/custodia-labs/semsync/internal/sources/chunker"
)

// Ensure Source implements the interface.
var _ driven.ContentSource = (*Source)(nil)

// Source reads PDF files from one directory.
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

// New creates a PDF source over dir.
func New(dir string, opts ...Option) *Source {
	dir = filepath.Clean(dir)
	s := &Source{
		dir:      dir,
		sourceID: "pdf:" + dir,
		workers:  chunker.DefaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SourceID returns the stable identity of this source instance.
func (s *Source) SourceID() string {
	return s.sourceID
}

// WatchPath returns the directory to watch for changes.
func (s *Source) WatchPath() string {
	return s.dir
}

// Diff returns new and modified PDF files, versioned by mtime.
func (s *Source) Diff(_ context.Context, existing []domain.Document) ([]domain.Document, error) {
	return sources.DiffDir(s.dir, ".pdf", s.sourceID, existing)
}

// FindDeleted returns ledger documents whose files are gone.
func (s *Source) FindDeleted(_ context.Context, existing []domain.Document) ([]domain.Document, error) {
	return sources.FindDeletedDir(s.dir, existing)
}

// Materialize extracts the PDF's text page by page, one chunk per
// non-empty page, and embeds each chunk. The chunk's page number is the
// PDF page number.
func (s *Source) Materialize(ctx context.Context, embedder driven.EmbeddingService, documentID string) ([]domain.IndexChunk, error) {
	chunks, err := s.extract(documentID)
	if err != nil {
		return nil, err
	}
	if err := chunker.EmbedAll(ctx, embedder, chunks, s.workers); err != nil {
		return nil, err
	}
	return chunks, nil
}

// extract reads one chunk of text per PDF page.
func (s *Source) extract(documentID string) ([]domain.IndexChunk, error) {
	f, r, err := pdf.Open(filepath.Join(s.dir, documentID))
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrMalformedContent, documentID, err)
	}
	defer f.Close()

	var chunks []domain.IndexChunk
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Pages that fail extraction are skipped, not fatal to the file.
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		chunks = append(chunks, domain.IndexChunk{
			Key:            domain.ChunkKey(documentID, i),
			SourceFileName: documentID,
			Page:           i,
			Text:           text,
		})
	}
	return chunks, nil
}
