// Package memory provides an in-memory vector index for development and
// tests. Entries are kept in a map keyed by chunk key; search is exact
// brute-force cosine similarity.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/semsync/internal/core/domain"
	"github.com/custodia-labs/semsync/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a thread-safe in-memory vector index.
type Index struct {
	mu     sync.RWMutex
	chunks map[string]domain.IndexChunk
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{chunks: make(map[string]domain.IndexChunk)}
}

// Upsert stores the given chunks, replacing entries with the same keys.
func (idx *Index) Upsert(_ context.Context, chunks []domain.IndexChunk) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, c := range chunks {
		idx.chunks[c.Key] = c
	}
	return nil
}

// Delete removes the entries with the given keys.
func (idx *Index) Delete(_ context.Context, keys []string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, key := range keys {
		delete(idx.chunks, key)
	}
	return nil
}

// Search returns the k nearest chunks by cosine similarity.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	hits := make([]domain.ScoredChunk, 0, len(idx.chunks))
	for _, c := range idx.chunks {
		hits = append(hits, domain.ScoredChunk{
			IndexChunk: c,
			Score:      cosineSimilarity(query, c.Vector),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Key < hits[j].Key
	})

	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close releases resources.
func (idx *Index) Close() error {
	return nil
}

// Len returns the number of stored chunks.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks)
}

// Keys returns the stored chunk keys, unordered.
func (idx *Index) Keys() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	keys := make([]string, 0, len(idx.chunks))
	for key := range idx.chunks {
		keys = append(keys, key)
	}
	return keys
}

// cosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths and zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
