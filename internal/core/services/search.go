package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/semsync/internal/core/domain"
	"github.com/custodia-labs/semsync/internal/core/ports/driven"
	"github.com/custodia-labs/semsync/internal/core/ports/driving"
	"github.com/custodia-labs/semsync/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.Searcher = (*SearchService)(nil)

// DefaultTopK is the result count used when the caller passes k <= 0.
const DefaultTopK = 5

// SearchService answers semantic queries by embedding the query text and
// running nearest-neighbour retrieval over the vector index.
type SearchService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
}

// NewSearchService creates a search service.
func NewSearchService(embedder driven.EmbeddingService, index driven.VectorIndex) *SearchService {
	return &SearchService{embedder: embedder, index: index}
}

// Search embeds the query and returns the k best-matching chunks.
func (s *SearchService) Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = DefaultTopK
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	logger.Debug("Search %q returned %d hits", query, len(hits))
	return hits, nil
}
