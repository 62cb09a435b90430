// Package sqlite provides the SQLite-backed ingestion ledger.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/semsync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/semsync/internal/core/domain"
	"github.com/custodia-labs/semsync/internal/core/ports/driven"
)

// Store is the SQLite-backed ledger database. It owns the connection and
// the schema; the Ledger interface is exposed through Ledger().
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.semsync/data/ledger.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".semsync", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "ledger.db")

	// WAL mode: the ledger must support safe concurrent upsert/delete by
	// differing keys when independent sources run concurrently.
	// foreign_keys is per-connection state, so it goes in the DSN where it
	// applies to every pooled connection; DeleteDocument relies on the
	// records cascade.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ledger returns a Ledger interface backed by this store.
func (s *Store) Ledger() driven.Ledger {
	return &ledgerStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Ledger ====================

// ledgerStore implements driven.Ledger.
type ledgerStore struct {
	store *Store
}

var _ driven.Ledger = (*ledgerStore)(nil)

// GetDocument retrieves a document with its records by (id, sourceID).
func (l *ledgerStore) GetDocument(ctx context.Context, id, sourceID string) (*domain.Document, error) {
	row := l.store.db.QueryRowContext(ctx, `
		SELECT id, source_id, version, created_at, updated_at
		FROM documents
		WHERE id = ? AND source_id = ?
	`, id, sourceID)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s/%s: %w", sourceID, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("querying document: %w", err)
	}

	records, err := l.recordsFor(ctx, id, sourceID)
	if err != nil {
		return nil, err
	}
	doc.Records = records
	return doc, nil
}

// ListDocuments returns all documents for a source, records included.
func (l *ledgerStore) ListDocuments(ctx context.Context, sourceID string) ([]domain.Document, error) {
	rows, err := l.store.db.QueryContext(ctx, `
		SELECT id, source_id, version, created_at, updated_at
		FROM documents
		WHERE source_id = ?
		ORDER BY id
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	// Attach records in one pass over the source's record rows.
	recRows, err := l.store.db.QueryContext(ctx, `
		SELECT record_id, document_id, document_source_id
		FROM records
		WHERE document_source_id = ?
		ORDER BY document_id, record_id
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer recRows.Close()

	byID := make(map[string]*domain.Document, len(docs))
	for i := range docs {
		byID[docs[i].ID] = &docs[i]
	}
	for recRows.Next() {
		var rec domain.Record
		if err := recRows.Scan(&rec.ID, &rec.DocumentID, &rec.DocumentSourceID); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if doc, ok := byID[rec.DocumentID]; ok {
			doc.Records = append(doc.Records, rec)
		}
	}
	if err := recRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return docs, nil
}

// UpsertDocument stores or replaces a document together with its full
// record set in one transaction.
func (l *ledgerStore) UpsertDocument(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	tx, err := l.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, source_id, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id, source_id) DO UPDATE SET
			version = excluded.version,
			updated_at = excluded.updated_at
	`, doc.ID, doc.SourceID, doc.Version, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	// The record set is replaced as a whole, never patched.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM records WHERE document_id = ? AND document_source_id = ?
	`, doc.ID, doc.SourceID)
	if err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}

	for _, rec := range doc.Records {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO records (record_id, document_id, document_source_id)
			VALUES (?, ?, ?)
		`, rec.ID, doc.ID, doc.SourceID)
		if err != nil {
			return fmt.Errorf("inserting record %d: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteDocument removes a document and its records.
func (l *ledgerStore) DeleteDocument(ctx context.Context, id, sourceID string) error {
	// Records cascade via the foreign key.
	_, err := l.store.db.ExecContext(ctx, `
		DELETE FROM documents WHERE id = ? AND source_id = ?
	`, id, sourceID)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// Close closes the underlying store.
func (l *ledgerStore) Close() error {
	return l.store.Close()
}

// recordsFor loads the record set of one document, ordered by record ID.
func (l *ledgerStore) recordsFor(ctx context.Context, id, sourceID string) ([]domain.Record, error) {
	rows, err := l.store.db.QueryContext(ctx, `
		SELECT record_id, document_id, document_source_id
		FROM records
		WHERE document_id = ? AND document_source_id = ?
		ORDER BY record_id
	`, id, sourceID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.DocumentSourceID); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanDocument reads one document row.
func scanDocument(s scanner) (*domain.Document, error) {
	var doc domain.Document
	if err := s.Scan(&doc.ID, &doc.SourceID, &doc.Version, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	return &doc, nil
}
