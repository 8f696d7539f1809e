package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("secret-token", WithBaseURL(server.URL))
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
}

func TestQueryDatabase_Pagination(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/databases/db-1/query", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Notion-Version"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			assert.Nil(t, body["start_cursor"])
			fmt.Fprint(w, `{
				"results": [{"id": "page-1", "url": "https://notion.so/page-1",
					"created_time": "2026-08-24T10:00:00.000Z",
					"last_edited_time": "2026-08-25T10:00:00.000Z",
					"properties": {"Name": {"type": "title", "title": [{"plain_text": "First"}]}}}],
				"next_cursor": "cursor-2",
				"has_more": true
			}`)
			return
		}
		assert.Equal(t, "cursor-2", body["start_cursor"])
		fmt.Fprint(w, `{
			"results": [{"id": "page-2", "url": "https://notion.so/page-2",
				"created_time": "2026-08-26T10:00:00.000Z",
				"last_edited_time": "2026-08-26T11:00:00.000Z",
				"properties": {}}],
			"next_cursor": null,
			"has_more": false
		}`)
	})

	first, err := client.QueryDatabase(context.Background(), "db-1", 50, "")
	require.NoError(t, err)
	require.Len(t, first.Pages, 1)
	assert.Equal(t, "page-1", first.Pages[0].ID)
	assert.Equal(t, "First", first.Pages[0].Properties["Name"].TitleText())
	assert.True(t, first.HasMore)
	assert.Equal(t, "cursor-2", first.NextCursor)

	second, err := client.QueryDatabase(context.Background(), "db-1", 50, first.NextCursor)
	require.NoError(t, err)
	require.Len(t, second.Pages, 1)
	assert.False(t, second.HasMore)
	assert.Empty(t, second.NextCursor)
}

func TestBlockChildren_FollowsPagination(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/blocks/page-1/children", r.URL.Path)

		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			assert.Empty(t, r.URL.Query().Get("start_cursor"))
			fmt.Fprint(w, `{
				"results": [
					{"id": "b1", "type": "heading_1", "heading_1": {"rich_text": [{"plain_text": "Intro"}]}},
					{"id": "b2", "type": "paragraph", "paragraph": {"rich_text": [{"plain_text": "Hello"}]}}
				],
				"next_cursor": "c2",
				"has_more": true
			}`)
			return
		}
		assert.Equal(t, "c2", r.URL.Query().Get("start_cursor"))
		fmt.Fprint(w, `{
			"results": [{"id": "b3", "type": "code", "code": {"rich_text": [{"plain_text": "x := 1"}]}}],
			"next_cursor": null,
			"has_more": false
		}`)
	})

	blocks, err := client.BlockChildren(context.Background(), "page-1")
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, "Intro", blocks[0].PlainText())
	assert.Equal(t, "Hello", blocks[1].PlainText())
	assert.Equal(t, "x := 1", blocks[2].PlainText())
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		rateLimited bool
		notFound    bool
	}{
		{
			name:        "rate limited",
			status:      http.StatusTooManyRequests,
			body:        `{"code": "rate_limited", "message": "slow down"}`,
			rateLimited: true,
		},
		{
			name:     "not found",
			status:   http.StatusNotFound,
			body:     `{"code": "object_not_found", "message": "no such database"}`,
			notFound: true,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"code": "internal_server_error", "message": "boom"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := client.QueryDatabase(context.Background(), "db-1", 10, "")
			require.Error(t, err)
			assert.Equal(t, tt.rateLimited, IsRateLimited(err))
			assert.Equal(t, tt.notFound, IsNotFound(err))
		})
	}
}

func TestBlockPlainText_UnknownType(t *testing.T) {
	block := Block{ID: "b9", Type: "image"}
	assert.Empty(t, block.PlainText())
}
