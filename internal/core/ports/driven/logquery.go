package driven

import (
	"context"
	"time"
)

// LogEntry is one timestamped line from a log stream.
type LogEntry struct {
	// Timestamp has nanosecond precision as delivered by the backend.
	Timestamp time.Time

	// Line is the raw log line.
	Line string
}

// LogStream is one label set and its entries within a queried range.
type LogStream struct {
	// Labels identify the stream. Serialisation order is not guaranteed;
	// consumers that derive identities from labels must canonicalise the
	// order themselves.
	Labels map[string]string

	// Entries are the lines of this stream, oldest first.
	Entries []LogEntry
}

// LogQuerier runs label-selector queries over a time range against a log
// backend. Consumed read-only by the windowed log source; any backend
// exposing the same query shape can stand in.
type LogQuerier interface {
	// QueryRange returns the streams matching selector between start and
	// end. The backend is addressed with Unix-second precision.
	QueryRange(ctx context.Context, selector string, start, end time.Time) ([]LogStream, error)
}
