// Package loki provides a log querier adapter over the Loki HTTP API.
// Only the query_range endpoint is consumed, read-only; any backend
// exposing the same shape can stand in.
package loki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/custodia-labs/semsync/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.LogQuerier = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second
	DefaultLimit   = 5000
)

// Config holds configuration for the Loki client.
type Config struct {
	// URL is the Loki base URL (required), e.g. http://localhost:3100.
	URL string

	// Limit caps the number of entries per query (default: 5000).
	Limit int

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Client queries a Loki server.
type Client struct {
	client  *http.Client
	baseURL string
	limit   int
}

// queryRangeResponse is the Loki /loki/api/v1/query_range response format.
type queryRangeResponse struct {
	Status string `json:"status"`
	Data   struct {
		ResultType string `json:"resultType"`
		Result     []struct {
			Stream map[string]string `json:"stream"`
			Values [][2]string       `json:"values"`
		} `json:"result"`
	} `json:"data"`
}

// NewClient creates a new Loki client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("loki: URL is required")
	}
	if cfg.Limit == 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.URL,
		limit:   cfg.Limit,
	}, nil
}

// QueryRange returns the streams matching selector between start and end.
// The range is addressed in Unix seconds; entry timestamps keep nanosecond
// precision.
func (c *Client) QueryRange(ctx context.Context, selector string, start, end time.Time) ([]driven.LogStream, error) {
	q := url.Values{}
	q.Set("query", selector)
	q.Set("start", strconv.FormatInt(start.Unix(), 10))
	q.Set("end", strconv.FormatInt(end.Unix(), 10))
	q.Set("limit", strconv.Itoa(c.limit))
	q.Set("direction", "forward")

	endpoint := c.baseURL + "/loki/api/v1/query_range?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("loki: creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loki: sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("loki: query_range returned %s: %s", resp.Status, msg)
	}

	var respBody queryRangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("loki: decoding response: %w", err)
	}
	if respBody.Status != "success" {
		return nil, fmt.Errorf("loki: query_range status %q", respBody.Status)
	}

	streams := make([]driven.LogStream, 0, len(respBody.Data.Result))
	for _, r := range respBody.Data.Result {
		stream := driven.LogStream{
			Labels:  r.Stream,
			Entries: make([]driven.LogEntry, 0, len(r.Values)),
		}
		for _, v := range r.Values {
			ns, err := strconv.ParseInt(v[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("loki: parsing entry timestamp %q: %w", v[0], err)
			}
			stream.Entries = append(stream.Entries, driven.LogEntry{
				Timestamp: time.Unix(0, ns),
				Line:      v[1],
			})
		}
		streams = append(streams, stream)
	}
	return streams, nil
}
