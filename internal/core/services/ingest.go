package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/semsync/internal/core/domain"
	"github.com/custodia-labs/semsync/internal/core/ports/driven"
	"github.com/custodia-labs/semsync/internal/core/ports/driving"
	"github.com/custodia-labs/semsync/internal/logger"
)

// Ensure IngestOrchestrator implements the interface.
var _ driving.Ingestor = (*IngestOrchestrator)(nil)

// IngestOrchestrator drives the diff -> delete -> (re)chunk -> embed ->
// upsert -> commit cycle across all registered content sources.
//
// Ordering is what makes the pass resumable: index entries are deleted
// before ledger rows (a failed index delete leaves the row so cleanup is
// retried), and index writes land before the ledger commit (a crash leaves
// the ledger pointing at the old version, so the document is re-attempted
// on the next pass and its stale chunks are cleaned up by the still-valid
// old record keys).
type IngestOrchestrator struct {
	ledger   driven.Ledger
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	sources  []driven.ContentSource

	mu     sync.RWMutex
	status driving.IngestStatus
}

// NewIngestOrchestrator creates an orchestrator over the given sources.
// Sources are processed sequentially in the order given.
func NewIngestOrchestrator(
	ledger driven.Ledger,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	sources ...driven.ContentSource,
) *IngestOrchestrator {
	return &IngestOrchestrator{
		ledger:   ledger,
		index:    index,
		embedder: embedder,
		sources:  sources,
	}
}

// Run executes one ingestion pass over every registered source.
//
// Failure semantics follow the error taxonomy: document-scoped failures
// (embedding, index writes, malformed content) are counted and retried next
// pass; a source enumeration failure aborts that source only; a ledger
// failure is fatal to the pass and propagates immediately.
func (o *IngestOrchestrator) Run(ctx context.Context) error {
	o.setStatus(driving.IngestStatus{RunID: uuid.New().String(), Running: true})
	defer o.finishStatus()

	var errs []error
	for _, src := range o.sources {
		if err := o.syncSource(ctx, src); err != nil {
			if errors.Is(err, domain.ErrLedger) || ctx.Err() != nil {
				return fmt.Errorf("source %s: %w", src.SourceID(), err)
			}
			logger.Warn("Source %s aborted: %v", src.SourceID(), err)
			errs = append(errs, fmt.Errorf("source %s: %w", src.SourceID(), err))
		}
	}
	return errors.Join(errs...)
}

// Status returns a copy of the current pass status.
func (o *IngestOrchestrator) Status() driving.IngestStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

// syncSource runs the full cycle for one source.
func (o *IngestOrchestrator) syncSource(ctx context.Context, src driven.ContentSource) error {
	sourceID := src.SourceID()
	logger.Info("Ingesting source %s", sourceID)

	existing, err := o.ledger.ListDocuments(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("%w: list documents: %w", domain.ErrLedger, err)
	}

	if err := o.cascadeDeletions(ctx, src, existing); err != nil {
		return err
	}

	changed, err := src.Diff(ctx, existing)
	if err != nil {
		return fmt.Errorf("diff: %w", err)
	}

	byID := make(map[string]*domain.Document, len(existing))
	for i := range existing {
		byID[existing[i].ID] = &existing[i]
	}

	for i := range changed {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		doc := changed[i]
		if err := o.indexDocument(ctx, src, doc, byID[doc.ID]); err != nil {
			if errors.Is(err, domain.ErrLedger) {
				return err
			}
			o.countError()
			logger.Warn("Source %s: document %s: %v", sourceID, doc.ID, err)
			continue
		}
		o.countIndexed()
		logger.Debug("Indexed %s (version %s)", doc.ID, doc.Version)
	}
	return nil
}

// cascadeDeletions removes index entries and ledger rows for documents the
// source no longer has. Index entries go first: if their deletion fails the
// ledger row stays, and cleanup is retried on the next pass rather than
// orphaning index entries the ledger has forgotten about.
func (o *IngestOrchestrator) cascadeDeletions(
	ctx context.Context,
	src driven.ContentSource,
	existing []domain.Document,
) error {
	deleted, err := src.FindDeleted(ctx, existing)
	if err != nil {
		return fmt.Errorf("find deleted: %w", err)
	}

	for i := range deleted {
		doc := &deleted[i]
		if err := o.index.Delete(ctx, doc.RecordKeys()); err != nil {
			o.countError()
			logger.Warn("Source %s: purge chunks of %s: %v", doc.SourceID, doc.ID, err)
			continue
		}
		if err := o.ledger.DeleteDocument(ctx, doc.ID, doc.SourceID); err != nil {
			return fmt.Errorf("%w: delete document %s: %w", domain.ErrLedger, doc.ID, err)
		}
		o.countDeleted()
		logger.Debug("Deleted %s", doc.ID)
	}
	return nil
}

// indexDocument replaces one new or modified document end to end. prev is
// the ledger's current row for the same ID, nil for new documents.
func (o *IngestOrchestrator) indexDocument(
	ctx context.Context,
	src driven.ContentSource,
	doc domain.Document,
	prev *domain.Document,
) error {
	if prev != nil {
		// A modified document is fully superseded, never patched: chunk
		// boundaries shift when content changes.
		if err := o.index.Delete(ctx, prev.RecordKeys()); err != nil {
			return fmt.Errorf("delete superseded chunks: %w", err)
		}
	}

	chunks, err := src.Materialize(ctx, o.embedder, doc.ID)
	if err != nil {
		return fmt.Errorf("materialize: %w", err)
	}

	if err := o.index.Upsert(ctx, chunks); err != nil {
		return fmt.Errorf("index upsert: %w", err)
	}

	// The ledger commit is the transactional boundary and comes only after
	// the full chunk set is in the index.
	doc.Records = make([]domain.Record, 0, len(chunks))
	for i := range chunks {
		doc.Records = append(doc.Records, domain.Record{
			ID:               chunks[i].Page,
			DocumentID:       doc.ID,
			DocumentSourceID: doc.SourceID,
		})
	}
	if err := o.ledger.UpsertDocument(ctx, &doc); err != nil {
		return fmt.Errorf("%w: commit document %s: %w", domain.ErrLedger, doc.ID, err)
	}
	return nil
}

func (o *IngestOrchestrator) setStatus(s driving.IngestStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = s
}

func (o *IngestOrchestrator) finishStatus() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.Running = false
}

func (o *IngestOrchestrator) countIndexed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.DocumentsIndexed++
}

func (o *IngestOrchestrator) countDeleted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.DocumentsDeleted++
}

func (o *IngestOrchestrator) countError() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.ErrorCount++
}
