package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeES answers the handful of endpoints the client touches
func fakeES(t *testing.T, onSearch func(index string, body map[string]interface{}) string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/":
			_, _ = w.Write([]byte(`{"version":{"number":"8.15.0"},"tagline":"You Know, for Search"}`))
		case strings.HasSuffix(r.URL.Path, "/_search"):
			index := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), "/_search")
			raw, _ := io.ReadAll(r.Body)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &body))
			_, _ = w.Write([]byte(onSearch(index, body)))
		case strings.Contains(r.URL.Path, "/_doc/"):
			if r.Method == http.MethodDelete {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"result":"not_found"}`))
				return
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"result":"created"}`))
		default:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_SearchPosts(t *testing.T) {
	srv := fakeES(t, func(index string, body map[string]interface{}) string {
		assert.Equal(t, IndexPosts, index)
		assert.EqualValues(t, 5, body["size"])
		return `{"hits":{"hits":[{"_id":"12"},{"_id":"7"},{"_id":"bogus"}]}}`
	})

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	ids, err := client.SearchPosts(context.Background(), "golang", 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{12, 7}, ids)
}

func TestClient_SearchUsers(t *testing.T) {
	srv := fakeES(t, func(index string, body map[string]interface{}) string {
		assert.Equal(t, IndexUsers, index)
		return `{"hits":{"hits":[{"_id":"3"}]}}`
	})

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	ids, err := client.SearchUsers(context.Background(), "ali", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids)
}

func TestClient_IndexAndDelete(t *testing.T) {
	srv := fakeES(t, nil)

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	ctx := context.Background()
	assert.NoError(t, client.IndexPost(ctx, PostDocument{ID: 1, UserID: 2, Username: "alice", PostType: "text", Content: "hi"}))
	assert.NoError(t, client.IndexUser(ctx, UserDocument{ID: 2, Username: "alice", Email: "a@example.com"}))
	assert.NoError(t, client.DeletePost(ctx, 99))
}
