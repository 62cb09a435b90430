package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semsync/internal/core/domain"
)

func TestIndex_UpsertDeleteSearch(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()

	require.NoError(t, idx.Upsert(ctx, []domain.IndexChunk{
		{Key: "a_1", Text: "north", Vector: []float32{1, 0}},
		{Key: "a_2", Text: "east", Vector: []float32{0, 1}},
		{Key: "b_1", Text: "northeast", Vector: []float32{1, 1}},
	}))
	assert.Equal(t, 3, idx.Len())

	hits, err := idx.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a_1", hits[0].Key)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.Equal(t, "b_1", hits[1].Key)

	// Upsert with the same key replaces, not duplicates.
	require.NoError(t, idx.Upsert(ctx, []domain.IndexChunk{
		{Key: "a_1", Text: "south", Vector: []float32{-1, 0}},
	}))
	assert.Equal(t, 3, idx.Len())

	require.NoError(t, idx.Delete(ctx, []string{"a_1", "missing"}))
	assert.Equal(t, 2, idx.Len())
}

func TestIndex_SearchKLargerThanIndex(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()
	require.NoError(t, idx.Upsert(ctx, []domain.IndexChunk{
		{Key: "a_1", Vector: []float32{1, 0}},
	}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestIndex_TieBreaksByKey(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()
	require.NoError(t, idx.Upsert(ctx, []domain.IndexChunk{
		{Key: "b_1", Vector: []float32{1, 0}},
		{Key: "a_1", Vector: []float32{1, 0}},
	}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, "a_1", hits[0].Key)
	assert.Equal(t, "b_1", hits[1].Key)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}
