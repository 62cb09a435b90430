package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder records delegated calls.
type countingEmbedder struct {
	embeds  int
	batches int
}

func (e *countingEmbedder) Embed(context.Context, string) ([]float32, error) {
	e.embeds++
	return []float32{1}, nil
}

func (e *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.batches++
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

func (e *countingEmbedder) Dimensions() int            { return 1 }
func (e *countingEmbedder) ModelName() string          { return "counting" }
func (e *countingEmbedder) Ping(context.Context) error { return nil }
func (e *countingEmbedder) Close() error               { return nil }

func TestWrap_Delegates(t *testing.T) {
	inner := &countingEmbedder{}
	svc := Wrap(inner, 1000, 10)

	_, err := svc.Embed(context.Background(), "x")
	require.NoError(t, err)
	_, err = svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, 1, inner.embeds)
	assert.Equal(t, 1, inner.batches)
	assert.Equal(t, 1, svc.Dimensions())
	assert.Equal(t, "counting", svc.ModelName())
}

func TestWrap_BlocksWhenBudgetExhausted(t *testing.T) {
	// One token per second, burst 1: the second call must wait.
	svc := Wrap(&countingEmbedder{}, 1, 1)

	_, err := svc.Embed(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = svc.Embed(ctx, "second")
	assert.Error(t, err)
}

func TestWrap_BatchLargerThanBurst(t *testing.T) {
	// The wait is capped at the burst so oversized batches still pass.
	inner := &countingEmbedder{}
	svc := Wrap(inner, 1000, 2)

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.batches)
}

func TestWrap_MinimumBurst(t *testing.T) {
	svc := Wrap(&countingEmbedder{}, 100, 0)
	_, err := svc.Embed(context.Background(), "x")
	assert.NoError(t, err)
}
