package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/require"
)

// fakeES answers every request with the given handler and the product header
// the client library checks for.
func fakeES(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestSearchDecodesHits(t *testing.T) {
	var gotBody map[string]any
	client := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"hits": {
				"total": {"value": 2},
				"hits": [
					{"_source": {"id": "r1", "title": "Pizza Friday", "restaurant": "Domino's", "platform": "grabfood"}},
					{"_source": {"id": "r2", "title": "Pizza Night", "restaurant": "PHD", "platform": "gofood"}}
				]
			}
		}`))
	})

	ix := NewIndex(client, "rooms")
	total, rooms, err := ix.Search(context.Background(), "pizza", 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, rooms, 2)
	require.Equal(t, "Pizza Friday", rooms[0].Title)
	require.Equal(t, "r2", rooms[1].ID)

	// The query fans out across title, restaurant and platform.
	query := gotBody["query"].(map[string]any)["multi_match"].(map[string]any)
	require.Equal(t, "pizza", query["query"])
	require.Len(t, query["fields"], 3)
}

func TestSearchErrorResponse(t *testing.T) {
	client := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"parsing_exception"}`))
	})

	ix := NewIndex(client, "rooms")
	_, _, err := ix.Search(context.Background(), "pizza", 0, 10)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing_exception")
}

func TestDeleteRoomToleratesMissing(t *testing.T) {
	client := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})

	ix := NewIndex(client, "rooms")
	require.NoError(t, ix.DeleteRoom(context.Background(), "missing-room"))
}
