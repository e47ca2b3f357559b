package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menusearch/internal/embedding"
)

func TestNewClientMissingKey(t *testing.T) {
	_, err := NewClient(Config{APIKeyEnv: "TEST_UNSET_OPENAI_KEY", Model: "text-embedding-3-small"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_UNSET_OPENAI_KEY")
}

func TestNewClientMissingModel(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	_, err := NewClient(Config{APIKeyEnv: "TEST_OPENAI_KEY"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model")
}

func TestNewClientAzureRequiresEndpoint(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	_, err := NewClient(Config{Provider: "azure", APIKeyEnv: "TEST_OPENAI_KEY", Model: "embed-deploy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint")
}

func TestNewClientUnsupportedProvider(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	_, err := NewClient(Config{Provider: "cohere", APIKeyEnv: "TEST_OPENAI_KEY", Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cohere")
}

// fakeEmbeddings serves the OpenAI embeddings API, answering every input with
// a fixed-dimension vector derived from its batch index.
func fakeEmbeddings(t *testing.T, dimension int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		type datum struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		data := make([]datum, len(req.Input))
		for i := range req.Input {
			vec := make([]float32, dimension)
			vec[i%dimension] = 1
			data[i] = datum{Object: "embedding", Index: i, Embedding: vec}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbedBatch(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	srv := fakeEmbeddings(t, 4)
	client, err := NewClient(Config{
		BaseURL:   srv.URL + "/v1",
		APIKeyEnv: "TEST_OPENAI_KEY",
		Model:     "text-embedding-3-small",
	})
	require.NoError(t, err)

	vectors, err := client.EmbedBatch(context.Background(), []string{"pork bun", "tea"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], 4)
	assert.Len(t, vectors[1], 4)
	assert.NotEqual(t, vectors[0], vectors[1])
}

func TestEmbedSingleMatchesBatch(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	srv := fakeEmbeddings(t, 4)
	client, err := NewClient(Config{
		BaseURL:   srv.URL + "/v1",
		APIKeyEnv: "TEST_OPENAI_KEY",
		Model:     "text-embedding-3-small",
	})
	require.NoError(t, err)

	single, err := client.Embed(context.Background(), "pork bun")
	require.NoError(t, err)
	batch, err := client.EmbedBatch(context.Background(), []string{"pork bun"})
	require.NoError(t, err)
	assert.Equal(t, batch[0], single)
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	client, err := NewClient(Config{APIKeyEnv: "TEST_OPENAI_KEY", Model: "text-embedding-3-small"})
	require.NoError(t, err)

	_, err = client.EmbedBatch(context.Background(), nil)
	var provErr *embedding.ProviderError
	assert.ErrorAs(t, err, &provErr)
}

func TestEmbedBatchTransportFailure(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limit exceeded","type":"requests"}}`)
	}))
	t.Cleanup(srv.Close)
	client, err := NewClient(Config{
		BaseURL:   srv.URL + "/v1",
		APIKeyEnv: "TEST_OPENAI_KEY",
		Model:     "text-embedding-3-small",
	})
	require.NoError(t, err)

	_, err = client.EmbedBatch(context.Background(), []string{"tea"})
	var provErr *embedding.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.NotNil(t, provErr.Unwrap())
}
