// Package qdrant provides a vector index adapter over the Qdrant REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/semsync/internal/core/domain"
	"github.com/custodia-labs/semsync/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultCollection = "semsync"
	DefaultTimeout    = 30 * time.Second
)

// Config holds configuration for the Qdrant index.
type Config struct {
	// URL is the Qdrant base URL (required), e.g. http://localhost:6333.
	URL string

	// APIKey is the optional Qdrant API key.
	APIKey string

	// Collection is the collection name (default: semsync).
	Collection string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Index stores chunks in a Qdrant collection. Chunk keys are mapped to
// deterministic point UUIDs so delete-by-key needs no lookup.
type Index struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	collection string
}

// NewIndex creates a Qdrant index adapter.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant: URL is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Index{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
	}, nil
}

// Init creates the collection if it does not exist. Qdrant returns success
// when the collection already exists with the same schema.
func (idx *Index) Init(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("qdrant: invalid dimensions %d", dimensions)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimensions,
			"distance": "Cosine",
		},
	}
	return idx.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", idx.collection), body, nil)
}

// Upsert stores the given chunks, replacing entries with the same keys.
func (idx *Index) Upsert(ctx context.Context, chunks []domain.IndexChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	points := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		points[i] = map[string]any{
			"id":     pointID(c.Key),
			"vector": c.Vector,
			"payload": map[string]any{
				"key":  c.Key,
				"file": c.SourceFileName,
				"page": c.Page,
				"text": c.Text,
			},
		}
	}
	body := map[string]any{"points": points}
	path := fmt.Sprintf("/collections/%s/points?wait=true", idx.collection)
	return idx.do(ctx, http.MethodPut, path, body, nil)
}

// Delete removes the entries with the given keys.
func (idx *Index) Delete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	ids := make([]string, len(keys))
	for i, key := range keys {
		ids[i] = pointID(key)
	}
	body := map[string]any{"points": ids}
	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", idx.collection)
	return idx.do(ctx, http.MethodPost, path, body, nil)
}

// Search returns the k nearest chunks by cosine similarity.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	body := map[string]any{
		"vector":       query,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", idx.collection)
	if err := idx.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}

	hits := make([]domain.ScoredChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		hit := domain.ScoredChunk{Score: r.Score}
		if v, ok := r.Payload["key"].(string); ok {
			hit.Key = v
		}
		if v, ok := r.Payload["file"].(string); ok {
			hit.SourceFileName = v
		}
		if v, ok := r.Payload["page"].(float64); ok {
			hit.Page = int(v)
		}
		if v, ok := r.Payload["text"].(string); ok {
			hit.Text = v
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Close releases resources.
func (idx *Index) Close() error {
	idx.client.CloseIdleConnections()
	return nil
}

// do sends one JSON request and optionally decodes the response into out.
func (idx *Index) do(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("qdrant: marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, idx.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("qdrant: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if idx.apiKey != "" {
		req.Header.Set("api-key", idx.apiKey)
	}

	resp, err := idx.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant: sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("qdrant: %s %s returned %s: %s", method, path, resp.Status, msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("qdrant: decoding response: %w", err)
		}
	}
	return nil
}

// pointID maps a chunk key to a deterministic Qdrant point UUID.
func pointID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}
