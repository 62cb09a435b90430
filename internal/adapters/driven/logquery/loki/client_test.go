package loki

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestQueryRange(t *testing.T) {
	start := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	entryTS := start.Add(5 * time.Minute)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/loki/api/v1/query_range", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, `{app="api"}`, q.Get("query"))
		assert.Equal(t, "1710406800", q.Get("start"))
		assert.Equal(t, "1710410400", q.Get("end"))
		assert.Equal(t, "500", q.Get("limit"))
		assert.Equal(t, "forward", q.Get("direction"))

		fmt.Fprintf(w, `{
			"status": "success",
			"data": {
				"resultType": "streams",
				"result": [{
					"stream": {"app": "api", "env": "prod"},
					"values": [["%d", "request completed"]]
				}]
			}
		}`, entryTS.UnixNano())
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL, Limit: 500})
	require.NoError(t, err)

	streams, err := client.QueryRange(context.Background(), `{app="api"}`, start, end)
	require.NoError(t, err)
	require.Len(t, streams, 1)
	assert.Equal(t, map[string]string{"app": "api", "env": "prod"}, streams[0].Labels)
	require.Len(t, streams[0].Entries, 1)
	assert.True(t, streams[0].Entries[0].Timestamp.Equal(entryTS))
	assert.Equal(t, "request completed", streams[0].Entries[0].Line)
}

func TestQueryRange_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	_, err = client.QueryRange(context.Background(), `{app="api"}`, time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestQueryRange_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "error", "data": {"result": []}}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	_, err = client.QueryRange(context.Background(), `{app="api"}`, time.Now().Add(-time.Hour), time.Now())
	assert.Error(t, err)
}
