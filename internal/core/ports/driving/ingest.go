package driving

import "context"

// Ingestor drives the incremental ingestion pass across all registered
// content sources.
type Ingestor interface {
	// Run executes one full pass: per source, diff against the ledger,
	// cascade deletions, re-chunk and re-embed changed documents, and
	// commit. Safe to invoke repeatedly; unchanged documents cost nothing.
	Run(ctx context.Context) error

	// Status returns progress of the current or most recent pass.
	Status() IngestStatus
}

// IngestStatus reports progress of an ingestion pass.
type IngestStatus struct {
	// RunID identifies the pass.
	RunID string

	// Running is true while a pass is in flight.
	Running bool

	// DocumentsIndexed counts documents committed this pass.
	DocumentsIndexed int

	// DocumentsDeleted counts documents cascade-deleted this pass.
	DocumentsDeleted int

	// ErrorCount counts document-scoped failures this pass. These
	// documents are retried on the next pass.
	ErrorCount int
}
