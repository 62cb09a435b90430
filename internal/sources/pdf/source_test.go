package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semsync/internal/core/domain"
)

func TestDiff_TracksPDFFilesOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.pdf"), []byte("%PDF-1.4"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	src := New(dir)
	changed, err := src.Diff(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, "report.pdf", changed[0].ID)
	assert.Equal(t, src.SourceID(), changed[0].SourceID)

	// With the ledger view up to date nothing changes.
	changed2, err := src.Diff(context.Background(), changed)
	require.NoError(t, err)
	assert.Empty(t, changed2)
}

func TestFindDeleted(t *testing.T) {
	dir := t.TempDir()
	src := New(dir)
	deleted, err := src.FindDeleted(context.Background(), []domain.Document{
		{ID: "gone.pdf", SourceID: src.SourceID()},
	})
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, "gone.pdf", deleted[0].ID)
}

func TestMaterialize_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.pdf"), []byte("not a pdf"), 0o600))

	src := New(dir)
	_, err := src.Materialize(context.Background(), nil, "bad.pdf")
	assert.ErrorIs(t, err, domain.ErrMalformedContent)
}

func TestSourceID_EmbedsDirectory(t *testing.T) {
	assert.Equal(t, "pdf:/srv/docs", New("/srv/docs").SourceID())
}
