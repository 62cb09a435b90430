package driving

import (
	"context"

	"github.com/custodia-labs/semsync/internal/core/domain"
)

// Searcher answers semantic queries over the vector index.
type Searcher interface {
	// Search embeds the query and returns the k best-matching chunks.
	Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error)
}

// Analyzer answers questions about the indexed corpus using retrieval plus
// chat completion.
type Analyzer interface {
	// Analyze retrieves context for the question and asks the LLM.
	Analyze(ctx context.Context, question string) (string, error)
}
