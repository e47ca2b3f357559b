package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	oai "github.com/sashabaranov/go-openai"

	"menusearch/internal/embedding"
)

// Client is an embeddings client for OpenAI-compatible services, including
// Azure OpenAI deployments.
type Client struct {
	client     *oai.Client
	model      string
	dimensions int
}

// Config configures the embeddings client. Provider selects between the
// public OpenAI API ("openai") and an Azure OpenAI resource ("azure"); for
// Azure, Model names the deployment and Endpoint the resource URL.
type Config struct {
	Provider   string
	BaseURL    string
	Endpoint   string
	APIKeyEnv  string
	Model      string
	APIVersion string
	Dimensions int
	Timeout    time.Duration
}

// NewClient creates a new embeddings client using the provided configuration.
// Missing credentials fail here, not on first use.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		return nil, errors.New("embedding model not configured")
	}

	var clientConfig oai.ClientConfig
	switch cfg.Provider {
	case "azure":
		if cfg.Endpoint == "" {
			return nil, errors.New("azure endpoint not configured")
		}
		clientConfig = oai.DefaultAzureConfig(key, cfg.Endpoint)
		if cfg.APIVersion != "" {
			clientConfig.APIVersion = cfg.APIVersion
		}
	case "openai", "":
		clientConfig = oai.DefaultConfig(key)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		client:     oai.NewClientWithConfig(clientConfig),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed returns the embedding vector for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per input text, in input order. Either all
// inputs are embedded or none are.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, &embedding.ProviderError{Err: errors.New("no texts provided for embedding")}
	}

	req := oai.EmbeddingRequest{
		Input:      texts,
		Model:      oai.EmbeddingModel(c.model),
		Dimensions: c.dimensions,
	}
	resp, err := c.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, &embedding.ProviderError{Err: err}
	}
	if len(resp.Data) != len(texts) {
		return nil, &embedding.ProviderError{
			Err: fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data)),
		}
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		if len(data.Embedding) == 0 {
			return nil, &embedding.ProviderError{Err: fmt.Errorf("empty embedding at index %d", i)}
		}
		vectors[i] = data.Embedding
	}
	return vectors, nil
}
