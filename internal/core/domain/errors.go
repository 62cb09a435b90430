package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedContent indicates a document's content could not be
	// decoded. The document is skipped; its siblings are still processed.
	ErrMalformedContent = errors.New("malformed content")

	// ErrLedger indicates the ledger storage failed. Ledger failures are
	// fatal to the current ingestion pass and propagate to the caller.
	ErrLedger = errors.New("ledger storage failure")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Semantic indexing and search are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrLLMUnavailable indicates the chat service is not configured.
	// Log analysis is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
