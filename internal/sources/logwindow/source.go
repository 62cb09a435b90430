// Package logwindow provides a content source over a label-query log
// backend. Lines are grouped into hour-aligned buckets per label set; each
// bucket is one document, versioned by a content hash because no stable
// mtime exists for a live query result.
package logwindow

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/semsync/internal/core/domain"
	"github.com/custodia-labs/semsync/internal/core/ports/driven"
	"github.com/custodia-labs/semsync/internal/sources/chunker"
)

// Ensure Source implements the interface.
var _ driven.ContentSource = (*Source)(nil)

// bucketFormat renders the hour-aligned bucket timestamp in document IDs.
const bucketFormat = "2006-01-02T15"

// DefaultLookback is how far back each pass queries.
const DefaultLookback = 24 * time.Hour

// Source derives documents from a log-query backend, one per hour-aligned
// bucket per label set within the lookback window.
type Source struct {
	querier  driven.LogQuerier
	selector string
	sourceID string
	lookback time.Duration
	workers  int
	now      func() time.Time

	// pending caches the window content computed during Diff so
	// Materialize indexes exactly the lines the version hash covers, with
	// no second query that could drift.
	mu      sync.Mutex
	pending map[string][]string
}

// Option configures the source.
type Option func(*Source)

// WithLookback sets the query window length.
func WithLookback(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.lookback = d
		}
	}
}

// WithWorkers bounds per-document embedding concurrency.
func WithWorkers(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithClock overrides the time source. Useful for testing.
func WithClock(now func() time.Time) Option {
	return func(s *Source) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a windowed log source for one selector.
func New(querier driven.LogQuerier, selector string, opts ...Option) *Source {
	s := &Source{
		querier:  querier,
		selector: selector,
		sourceID: "logwindow:" + selector,
		lookback: DefaultLookback,
		workers:  chunker.DefaultWorkers,
		now:      time.Now,
		pending:  make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SourceID returns the stable identity of this source instance.
// The selector is part of the identity so two instances over different
// selectors partition the ledger separately.
func (s *Source) SourceID() string {
	return s.sourceID
}

// Diff queries the lookback window, buckets lines per calendar hour and
// label set, and returns the buckets whose content hash differs from the
// ledger view.
func (s *Source) Diff(ctx context.Context, existing []domain.Document) ([]domain.Document, error) {
	end := s.now()
	start := end.Add(-s.lookback)

	streams, err := s.querier.QueryRange(ctx, s.selector, start, end)
	if err != nil {
		return nil, fmt.Errorf("query range: %w", err)
	}

	type line struct {
		ts   time.Time
		text string
	}
	buckets := make(map[string][]line)
	for _, stream := range streams {
		sig := labelSignature(stream.Labels)
		for _, entry := range stream.Entries {
			ts := entry.Timestamp.UTC()
			id := ts.Truncate(time.Hour).Format(bucketFormat) + "_" + sig
			buckets[id] = append(buckets[id], line{ts: ts, text: entry.Line})
		}
	}

	known := make(map[string]string, len(existing))
	for _, doc := range existing {
		known[doc.ID] = doc.Version
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[string][]string, len(buckets))

	var changed []domain.Document
	for id, lines := range buckets {
		// Order-stable serialisation before hashing: any instability here
		// causes spurious re-indexing on every pass.
		sort.Slice(lines, func(i, j int) bool {
			if !lines[i].ts.Equal(lines[j].ts) {
				return lines[i].ts.Before(lines[j].ts)
			}
			return lines[i].text < lines[j].text
		})
		formatted := make([]string, len(lines))
		for i, l := range lines {
			formatted[i] = l.ts.Format(time.RFC3339Nano) + " " + l.text
		}
		s.pending[id] = formatted

		version := hashLines(formatted)
		if known[id] == version {
			continue
		}
		changed = append(changed, domain.Document{
			ID:       id,
			SourceID: s.sourceID,
			Version:  version,
		})
	}

	sort.Slice(changed, func(i, j int) bool { return changed[i].ID < changed[j].ID })
	return changed, nil
}

// FindDeleted always returns nothing: the window is append-only and a
// bucket sliding out of the lookback range does not mean its content was
// deleted. Old buckets stay retrievable until a later pass re-observes
// them changed. This is an intentional weakening of the contract.
func (s *Source) FindDeleted(context.Context, []domain.Document) ([]domain.Document, error) {
	return nil, nil
}

// Materialize chunks and embeds the bucket content cached by the preceding
// Diff call.
func (s *Source) Materialize(ctx context.Context, embedder driven.EmbeddingService, documentID string) ([]domain.IndexChunk, error) {
	s.mu.Lock()
	lines, ok := s.pending[documentID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("bucket %s not observed in this pass: %w", documentID, domain.ErrNotFound)
	}

	b := chunker.NewBuilder(documentID, documentID)
	for _, l := range lines {
		b.Add(l)
	}
	chunks := b.Chunks()

	if err := chunker.EmbedAll(ctx, embedder, chunks, s.workers); err != nil {
		return nil, err
	}
	return chunks, nil
}

// labelSignature serialises a label set in canonical order: keys sorted,
// "k=v" pairs joined by "_". Map iteration order must never leak into
// document identity.
func labelSignature(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+labels[k])
	}
	return strings.Join(pairs, "_")
}

// hashLines derives the version token: base64 of the SHA-256 digest of the
// newline-joined, timestamp-prefixed lines.
func hashLines(lines []string) string {
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return base64.StdEncoding.EncodeToString(sum[:])
}
