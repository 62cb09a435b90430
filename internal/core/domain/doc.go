// Package domain defines the core business entities for semsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: One indexable unit owned by a content source
//   - Record: The link from a document to one chunk in the vector index
//   - IndexChunk: A text span plus its embedding vector
//   - ScoredChunk: A retrieval result
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
