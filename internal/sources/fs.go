package sources

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/semsync/internal/core/domain"
)

// FileVersion returns the version token for a file: its last-modified time
// in UTC ISO-8601 form, compared as a string. Cheap but coarse: an edit
// that leaves the mtime unchanged is invisible, and a touch without an
// edit is indistinguishable from a real change.
func FileVersion(info fs.FileInfo) string {
	return info.ModTime().UTC().Format(time.RFC3339)
}

// DiffDir scans dir for regular files with extension ext (e.g. ".json")
// and returns documents that are new or whose version differs from the
// ledger view in existing. The ledger is not touched.
func DiffDir(dir, ext, sourceID string, existing []domain.Document) ([]domain.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	known := make(map[string]string, len(existing))
	for _, doc := range existing {
		known[doc.ID] = doc.Version
	}

	var changed []domain.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		version := FileVersion(info)
		if known[entry.Name()] == version {
			continue
		}
		changed = append(changed, domain.Document{
			ID:       entry.Name(),
			SourceID: sourceID,
			Version:  version,
		})
	}
	return changed, nil
}

// FindDeletedDir returns the documents from existing whose files no longer
// exist under dir.
func FindDeletedDir(dir string, existing []domain.Document) ([]domain.Document, error) {
	var deleted []domain.Document
	for _, doc := range existing {
		_, err := os.Stat(filepath.Join(dir, doc.ID))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			deleted = append(deleted, doc)
		case err != nil:
			return nil, fmt.Errorf("stat %s: %w", doc.ID, err)
		}
	}
	return deleted, nil
}
