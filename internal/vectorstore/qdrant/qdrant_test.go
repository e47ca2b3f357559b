package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menusearch/internal/domain"
	"menusearch/internal/vectorstore"
)

// fakeQdrant records requests and serves canned responses keyed by
// "METHOD path".
type fakeQdrant struct {
	responses map[string]string
	requests  []recordedRequest
}

type recordedRequest struct {
	method string
	url    string
	apiKey string
	body   map[string]any
}

func (f *fakeQdrant) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			url:    r.URL.Path + pathQuery(r),
			apiKey: r.Header.Get("api-key"),
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		f.requests = append(f.requests, rec)

		key := r.Method + " " + r.URL.Path
		body, ok := f.responses[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"status":{"error":"Not found"}}`)
			return
		}
		fmt.Fprint(w, body)
	})
}

func pathQuery(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return ""
	}
	return "?" + r.URL.RawQuery
}

func newFake(t *testing.T, responses map[string]string) (*fakeQdrant, *Store) {
	t.Helper()
	fake := &fakeQdrant{responses: responses}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	return fake, NewStore(Config{URL: srv.URL, APIKey: "secret"})
}

func TestInfo(t *testing.T) {
	_, store := newFake(t, map[string]string{
		"GET /collections/menu": `{"result":{"points_count":42,"config":{"params":{"vectors":{"size":1536,"distance":"Cosine"}}}}}`,
	})

	info, err := store.Info(context.Background(), "menu")
	require.NoError(t, err)
	assert.Equal(t, domain.CollectionInfo{PointCount: 42, Dimension: 1536, Distance: "Cosine"}, info)
}

func TestInfoNotFound(t *testing.T) {
	_, store := newFake(t, nil)

	_, err := store.Info(context.Background(), "missing")
	assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
}

func TestRecreateDeletesThenCreates(t *testing.T) {
	fake, store := newFake(t, map[string]string{
		"DELETE /collections/menu": `{"result":true}`,
		"PUT /collections/menu":    `{"result":true}`,
	})

	require.NoError(t, store.Recreate(context.Background(), "menu", 1536))
	require.Len(t, fake.requests, 2)
	assert.Equal(t, http.MethodDelete, fake.requests[0].method)
	assert.Equal(t, http.MethodPut, fake.requests[1].method)
	vectors := fake.requests[1].body["vectors"].(map[string]any)
	assert.Equal(t, float64(1536), vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
}

func TestRecreateToleratesMissingCollection(t *testing.T) {
	// DELETE answers 404 when nothing exists yet; the create must still run.
	_, store := newFake(t, map[string]string{
		"PUT /collections/menu": `{"result":true}`,
	})
	assert.NoError(t, store.Recreate(context.Background(), "menu", 8))
}

func TestUpsertSendsWaitAndPayload(t *testing.T) {
	fake, store := newFake(t, map[string]string{
		"PUT /collections/menu/points": `{"result":{"status":"completed"}}`,
	})

	points := []domain.Point{
		{ID: "a-1", Vector: []float32{0.1, 0.2}, Payload: domain.Payload{ItemName: "tea"}},
	}
	require.NoError(t, store.Upsert(context.Background(), "menu", points, true))

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, "/collections/menu/points?wait=true", req.url)
	assert.Equal(t, "secret", req.apiKey)
	sent := req.body["points"].([]any)[0].(map[string]any)
	assert.Equal(t, "a-1", sent["id"])
	assert.Equal(t, map[string]any{"item_name": "tea"}, sent["payload"])
}

func TestUpsertSurfacesDimensionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"status":{"error":"Wrong input: Vector dimension error: expected dim: 1536, got 2"}}`)
	}))
	t.Cleanup(srv.Close)
	store := NewStore(Config{URL: srv.URL})

	err := store.Upsert(context.Background(), "menu", []domain.Point{
		{ID: "a", Vector: []float32{0.1, 0.2}},
	}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Vector dimension error")
	var storeErr *vectorstore.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "menu", storeErr.Collection)
}

func TestSearch(t *testing.T) {
	fake, store := newFake(t, map[string]string{
		"POST /collections/menu/points/search": `{"result":[{"id":"a-1","score":0.91,"payload":{"item_name":"beef noodle soup"}}]}`,
	})

	hits, err := store.Search(context.Background(), "menu", []float32{0.5, 0.5}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "beef noodle soup", hits[0].Payload.ItemName)
	assert.InDelta(t, 0.91, float64(hits[0].Score), 1e-6)

	req := fake.requests[0]
	assert.Equal(t, float64(1), req.body["limit"])
	assert.Equal(t, true, req.body["with_payload"])
}

func TestResolveAlias(t *testing.T) {
	_, store := newFake(t, map[string]string{
		"GET /aliases": `{"result":{"aliases":[{"alias_name":"menu","collection_name":"menu_ab12cd34"}]}}`,
	})

	collection, ok, err := store.ResolveAlias(context.Background(), "menu")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "menu_ab12cd34", collection)

	_, ok, err = store.ResolveAlias(context.Background(), "other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSwapAliasReplacesExisting(t *testing.T) {
	fake, store := newFake(t, map[string]string{
		"GET /aliases":              `{"result":{"aliases":[{"alias_name":"menu","collection_name":"menu_old"}]}}`,
		"POST /collections/aliases": `{"result":true}`,
	})

	require.NoError(t, store.SwapAlias(context.Background(), "menu", "menu_new"))

	last := fake.requests[len(fake.requests)-1]
	actions := last.body["actions"].([]any)
	require.Len(t, actions, 2, "delete old alias and create the new one atomically")
	_, hasDelete := actions[0].(map[string]any)["delete_alias"]
	assert.True(t, hasDelete)
	create := actions[1].(map[string]any)["create_alias"].(map[string]any)
	assert.Equal(t, "menu_new", create["collection_name"])
	assert.Equal(t, "menu", create["alias_name"])
}

func TestSwapAliasFirstInstall(t *testing.T) {
	fake, store := newFake(t, map[string]string{
		"GET /aliases":              `{"result":{"aliases":[]}}`,
		"POST /collections/aliases": `{"result":true}`,
	})

	require.NoError(t, store.SwapAlias(context.Background(), "menu", "menu_new"))

	last := fake.requests[len(fake.requests)-1]
	actions := last.body["actions"].([]any)
	require.Len(t, actions, 1)
	_, hasCreate := actions[0].(map[string]any)["create_alias"]
	assert.True(t, hasCreate)
}
