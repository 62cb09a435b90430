package driven

import (
	"context"

	"github.com/custodia-labs/semsync/internal/core/domain"
)

// VectorIndex is the external key-value vector store. Entries are keyed by
// chunk key; an upsert is a full replace of that key's record.
type VectorIndex interface {
	// Upsert stores the given chunks, replacing any existing entries with
	// the same keys.
	Upsert(ctx context.Context, chunks []domain.IndexChunk) error

	// Delete removes the entries with the given keys. Keys that are not
	// present are ignored.
	Delete(ctx context.Context, keys []string) error

	// Search finds the k nearest neighbours to the query vector, ranked by
	// similarity.
	Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error)

	// Close releases resources.
	Close() error
}
