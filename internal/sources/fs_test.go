package sources

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semsync/internal/core/domain"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestDiffDir(t *testing.T) {
	dir := t.TempDir()
	t0 := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	touch(t, filepath.Join(dir, "a.json"), t0)
	touch(t, filepath.Join(dir, "b.json"), t0)
	touch(t, filepath.Join(dir, "notes.txt"), t0) // wrong extension, ignored
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o700))

	changed, err := DiffDir(dir, ".json", "jsonlog:"+dir, nil)
	require.NoError(t, err)
	require.Len(t, changed, 2)
	assert.Equal(t, "2024-03-14T09:00:00Z", changed[0].Version)

	// Report the current state as the ledger view: nothing changes.
	changed2, err := DiffDir(dir, ".json", "jsonlog:"+dir, changed)
	require.NoError(t, err)
	assert.Empty(t, changed2)

	// Touch one file: only that one reappears.
	touch(t, filepath.Join(dir, "b.json"), t0.Add(time.Minute))
	changed3, err := DiffDir(dir, ".json", "jsonlog:"+dir, changed)
	require.NoError(t, err)
	require.Len(t, changed3, 1)
	assert.Equal(t, "b.json", changed3[0].ID)
	assert.Equal(t, "2024-03-14T09:01:00Z", changed3[0].Version)
}

func TestDiffDir_MissingDirectory(t *testing.T) {
	_, err := DiffDir(filepath.Join(t.TempDir(), "nope"), ".json", "jsonlog:x", nil)
	assert.Error(t, err)
}

func TestFindDeletedDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "kept.json"), time.Now())

	existing := []domain.Document{
		{ID: "kept.json", SourceID: "jsonlog:" + dir},
		{ID: "gone.json", SourceID: "jsonlog:" + dir},
	}
	deleted, err := FindDeletedDir(dir, existing)
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, "gone.json", deleted[0].ID)
}
