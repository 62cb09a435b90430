// Package sample provides a development fallback for the log querier: a
// deterministic generator of plausible log streams, used when no log
// backend is configured. Lines are derived from the seed and the entry
// timestamp, so overlapping or repeated queries agree on shared content
// and incremental passes see stable windows.
package sample

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/custodia-labs/semsync/internal/core/ports/driven"
)

// Ensure Querier implements the interface.
var _ driven.LogQuerier = (*Querier)(nil)

// Entry spacing within a generated stream.
const entryInterval = 30 * time.Second

var levels = []string{"info", "info", "info", "warn", "error", "debug"}

var messages = []string{
	"request completed",
	"connection established",
	"cache miss for key user-session",
	"retrying upstream call",
	"slow query detected",
	"worker pool saturated",
	"token refreshed",
	"health check passed",
}

// Querier generates deterministic sample streams for a selector and range.
type Querier struct {
	apps []string
	seed int64
}

// NewQuerier creates a sample querier seeded with seed. The same seed and
// timestamp always produce the same line, regardless of the queried range.
func NewQuerier(seed int64) *Querier {
	return &Querier{
		apps: []string{"api", "worker"},
		seed: seed,
	}
}

// QueryRange generates one stream per sample app over [start, end). The
// generator answers every selector with its fixed apps.
func (q *Querier) QueryRange(_ context.Context, _ string, start, end time.Time) ([]driven.LogStream, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("sample: end %s not after start %s", end, start)
	}

	streams := make([]driven.LogStream, 0, len(q.apps))
	for _, app := range q.apps {
		stream := driven.LogStream{
			Labels: map[string]string{"app": app, "job": "sample"},
		}
		for ts := start.Truncate(entryInterval); ts.Before(end); ts = ts.Add(entryInterval) {
			if ts.Before(start) {
				continue
			}
			rng := q.entryRNG(app, ts)
			level := levels[rng.Intn(len(levels))]
			msg := messages[rng.Intn(len(messages))]
			stream.Entries = append(stream.Entries, driven.LogEntry{
				Timestamp: ts,
				Line:      fmt.Sprintf("level=%s app=%s msg=%q", level, app, msg),
			})
		}
		streams = append(streams, stream)
	}
	return streams, nil
}

// entryRNG derives the per-entry random source from the seed, the app and
// the entry timestamp. Deriving per entry rather than per call keeps a
// bucket's content identical across passes whose windows merely shifted.
func (q *Querier) entryRNG(app string, ts time.Time) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(app))
	return rand.New(rand.NewSource(q.seed ^ ts.UnixNano() ^ int64(h.Sum64())))
}
