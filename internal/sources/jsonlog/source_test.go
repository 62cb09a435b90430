package jsonlog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semsync/internal/core/domain"
)

func TestMaterialize_ArrayLayout(t *testing.T) {
	dir := t.TempDir()
	// 23 entries around 20 characters each: chunks of 10, 10 and 3.
	var entries []string
	for i := 0; i < 23; i++ {
		entries = append(entries, fmt.Sprintf(`{"msg": "event %02d"}`, i))
	}
	content := "[" + strings.Join(entries, ",") + "]"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(content), 0o600))

	src := New(dir, WithWorkers(1))
	chunks, err := src.Materialize(context.Background(), fixedEmbedder{}, "a.json")
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	assert.Equal(t, "a_1", chunks[0].Key)
	assert.Equal(t, "a_2", chunks[1].Key)
	assert.Equal(t, "a_3", chunks[2].Key)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 2, chunks[1].Page)
	assert.Equal(t, 3, chunks[2].Page)
	assert.Len(t, strings.Split(chunks[0].Text, "\n"), 10)
	assert.Len(t, strings.Split(chunks[2].Text, "\n"), 3)
	// Entries are compacted before chunking.
	assert.Contains(t, chunks[0].Text, `{"msg":"event 00"}`)
	for _, c := range chunks {
		assert.NotEmpty(t, c.Vector)
	}
}

func TestMaterialize_JSONLinesLayout(t *testing.T) {
	dir := t.TempDir()
	content := "{\"msg\":\"one\"}\n{\"msg\":\"two\"}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lines.json"), []byte(content), 0o600))

	src := New(dir, WithWorkers(1))
	chunks, err := src.Materialize(context.Background(), fixedEmbedder{}, "lines.json")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "lines_1", chunks[0].Key)
	assert.Equal(t, "{\"msg\":\"one\"}\n{\"msg\":\"two\"}", chunks[0].Text)
}

func TestMaterialize_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o600))

	src := New(dir)
	_, err := src.Materialize(context.Background(), fixedEmbedder{}, "bad.json")
	assert.ErrorIs(t, err, domain.ErrMalformedContent)
}

func TestMaterialize_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.json"), []byte("  \n"), 0o600))

	src := New(dir)
	chunks, err := src.Materialize(context.Background(), fixedEmbedder{}, "empty.json")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSourceID_EmbedsDirectory(t *testing.T) {
	a := New("/var/log/app")
	b := New("/var/log/other")
	assert.Equal(t, "jsonlog:/var/log/app", a.SourceID())
	assert.NotEqual(t, a.SourceID(), b.SourceID())
}

// fixedEmbedder returns a constant vector.
type fixedEmbedder struct{}

func (fixedEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1}, nil
}

func (fixedEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

func (fixedEmbedder) Dimensions() int            { return 1 }
func (fixedEmbedder) ModelName() string          { return "fixed" }
func (fixedEmbedder) Ping(context.Context) error { return nil }
func (fixedEmbedder) Close() error               { return nil }
