package driven

import (
	"context"

	"github.com/custodia-labs/semsync/internal/core/domain"
)

// ContentSource enumerates its own documents and materialises their content
// into indexable chunks. Each source kind (filesystem PDF, filesystem JSON
// log, windowed remote log query) implements this interface.
type ContentSource interface {
	// SourceID returns the stable identity of this source instance. It is
	// deterministic across restarts and partitions the ledger and the
	// vector index.
	SourceID() string

	// Diff returns documents that are new or whose version differs from
	// the value recorded in existing, the ledger's view for this source.
	// Returned documents are detached values carrying freshly computed
	// versions. Diff must not mutate the ledger.
	Diff(ctx context.Context, existing []domain.Document) ([]domain.Document, error)

	// FindDeleted returns ledger documents that no longer exist at the
	// source. A source that cannot reliably detect deletion (an
	// append-only log window) returns an empty slice unconditionally.
	FindDeleted(ctx context.Context, existing []domain.Document) ([]domain.Document, error)

	// Materialize reads or derives the document's full content, partitions
	// it into chunks and embeds each chunk via the embedding service.
	// A failure embedding one chunk aborts materialisation for this
	// document only; the orchestrator decides what to commit.
	Materialize(ctx context.Context, embedder EmbeddingService, documentID string) ([]domain.IndexChunk, error)
}
