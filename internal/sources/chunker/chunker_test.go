package chunker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semsync/internal/core/domain"
)

func TestBuilder_FlushesAtEntryBudget(t *testing.T) {
	b := NewBuilder("a.json", "a.json")
	// 23 short entries: two full chunks of 10 plus a partial of 3.
	for i := 0; i < 23; i++ {
		b.Add(fmt.Sprintf(`{"n":%d}`, i))
	}
	chunks := b.Chunks()

	require.Len(t, chunks, 3)
	assert.Equal(t, "a_1", chunks[0].Key)
	assert.Equal(t, "a_2", chunks[1].Key)
	assert.Equal(t, "a_3", chunks[2].Key)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 3, chunks[2].Page)
	assert.Len(t, strings.Split(chunks[0].Text, "\n"), 10)
	assert.Len(t, strings.Split(chunks[2].Text, "\n"), 3)
}

func TestBuilder_FlushesAtCharBudget(t *testing.T) {
	b := NewBuilder("big.json", "big.json")
	long := strings.Repeat("x", 600)
	b.Add(long)
	b.Add(long) // joined length 1201 > 1000: flush both together
	b.Add("tail")
	chunks := b.Chunks()

	require.Len(t, chunks, 2)
	assert.Len(t, strings.Split(chunks[0].Text, "\n"), 2)
	assert.Equal(t, "tail", chunks[1].Text)
}

func TestBuilder_Empty(t *testing.T) {
	b := NewBuilder("empty.json", "empty.json")
	assert.Empty(t, b.Chunks())
}

func TestEmbedAll_FillsVectors(t *testing.T) {
	chunks := []domain.IndexChunk{
		{Key: "a_1", Text: "one"},
		{Key: "a_2", Text: "two"},
		{Key: "a_3", Text: "three"},
	}
	emb := &stubEmbedder{}
	require.NoError(t, EmbedAll(context.Background(), emb, chunks, 2))
	for _, c := range chunks {
		assert.Equal(t, []float32{float32(len(c.Text))}, c.Vector)
	}
	assert.Equal(t, int32(3), emb.calls.Load())
}

func TestEmbedAll_FirstErrorWins(t *testing.T) {
	chunks := []domain.IndexChunk{
		{Key: "a_1", Text: "one"},
		{Key: "a_2", Text: "boom"},
		{Key: "a_3", Text: "three"},
	}
	emb := &stubEmbedder{failText: "boom"}
	err := EmbedAll(context.Background(), emb, chunks, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a_2")
}

func TestEmbedAll_NoChunks(t *testing.T) {
	require.NoError(t, EmbedAll(context.Background(), &stubEmbedder{}, nil, 4))
}

type stubEmbedder struct {
	calls    atomic.Int32
	failText string
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if e.failText != "" && text == e.failText {
		return nil, errors.New("backend unavailable")
	}
	return []float32{float32(len(text))}, nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int            { return 1 }
func (e *stubEmbedder) ModelName() string          { return "stub" }
func (e *stubEmbedder) Ping(context.Context) error { return nil }
func (e *stubEmbedder) Close() error               { return nil }
