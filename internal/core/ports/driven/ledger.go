package driven

import (
	"context"

	"github.com/custodia-labs/semsync/internal/core/domain"
)

// Ledger is the durable record of every document ever ingested per source,
// its current version and the index keys it owns. It is the single source
// of truth the orchestrator consults for "what did we already index".
// Backed by SQLite.
type Ledger interface {
	// GetDocument retrieves a document with its records by (id, sourceID).
	// Returns domain.ErrNotFound if no such document exists.
	GetDocument(ctx context.Context, id, sourceID string) (*domain.Document, error)

	// ListDocuments returns all documents for a source, records included.
	ListDocuments(ctx context.Context, sourceID string) ([]domain.Document, error)

	// UpsertDocument stores or replaces a document together with its full
	// record set in one transaction. The previous record set is removed;
	// partial record updates never occur.
	UpsertDocument(ctx context.Context, doc *domain.Document) error

	// DeleteDocument removes a document and its records.
	DeleteDocument(ctx context.Context, id, sourceID string) error

	// Close releases resources.
	Close() error
}
