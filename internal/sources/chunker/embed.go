package chunker

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/semsync/internal/core/domain"
	"github.com/custodia-labs/semsync/internal/core/ports/driven"
)

// DefaultWorkers bounds per-document embedding concurrency. Chunk
// embeddings are independent, but the embedding capability is rate-limited;
// unbounded fan-out risks availability for no correctness gain.
const DefaultWorkers = 4

// EmbedAll fills in the vectors of chunks, embedding each chunk's text on a
// bounded worker pool. The first failure cancels the remaining work and is
// returned; chunks embedded before the failure keep their vectors, but the
// caller must treat the whole set as unusable.
func EmbedAll(ctx context.Context, embedder driven.EmbeddingService, chunks []domain.IndexChunk, workers int) error {
	if len(chunks) == 0 {
		return nil
	}
	if workers < 1 {
		workers = DefaultWorkers
	}
	if workers > len(chunks) {
		workers = len(chunks)
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for i := range chunks {
		chunk := &chunks[i]
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			vector, err := embedder.Embed(ctx, chunk.Text)
			if err != nil {
				fail(fmt.Errorf("embed chunk %s: %w", chunk.Key, err))
				return
			}
			chunk.Vector = vector
		})
		if submitErr != nil {
			wg.Done()
			fail(fmt.Errorf("submitting chunk %s: %w", chunk.Key, submitErr))
			break
		}
	}

	wg.Wait()
	return firstErr
}
