package search

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/kicks_premium/services/catalog/internal/models"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

func newFakeES(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*Index, func() []recordedRequest) {
	t.Helper()

	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		respond(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	return NewIndex(client, "products"), func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
}

func TestIndex_Search(t *testing.T) {
	t.Parallel()

	ix, requests := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":2},"hits":[{"_id":"a"},{"_id":"b"}]}}`)
	})

	total, ids, err := ix.Search(t.Context(), " jordan ", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []string{"a", "b"}, ids)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/products/_search", reqs[0].Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(reqs[0].Body), &body))
	assert.Contains(t, reqs[0].Body, `"name^2"`)
	assert.Contains(t, reqs[0].Body, `"fuzziness":"AUTO"`)
	assert.Contains(t, reqs[0].Body, `"query":"jordan"`)
}

func TestIndex_Search_EmptyQuerySkipsCluster(t *testing.T) {
	t.Parallel()

	ix, requests := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	})

	total, ids, err := ix.Search(t.Context(), "   ", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, ids)
	assert.Empty(t, requests())
}

func TestIndex_UpsertAndRemove(t *testing.T) {
	t.Parallel()

	ix, requests := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"result":"not_found"}`)
			return
		}
		_, _ = io.WriteString(w, `{"result":"created"}`)
	})

	p := &models.Product{ID: uuid.New(), Name: "Samba OG", Slug: "samba-og", Brand: "Adidas", Price: 12000, IsActive: true}
	require.NoError(t, ix.Upsert(t.Context(), p))
	require.NoError(t, ix.Remove(t.Context(), p.ID.String()), "a missing document is not an error")

	reqs := requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/products/_doc/"+p.ID.String(), reqs[0].Path)
	assert.True(t, strings.Contains(reqs[0].Body, `"slug":"samba-og"`))
	assert.Equal(t, http.MethodDelete, reqs[1].Method)
}

func TestIndex_SearchClusterError(t *testing.T) {
	t.Parallel()

	ix, _ := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"boom"}`)
	})

	_, _, err := ix.Search(t.Context(), "samba", 0, 10)
	require.Error(t, err)
}
