package embedding

import "context"

// Embedder converts free text into fixed-dimension numeric vectors.
// EmbedBatch returns one vector per input in the same order, all sharing one
// dimension; batching is a throughput optimization only and yields the same
// vector for a given text as a single Embed call. Failures are all-or-nothing.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ProviderError wraps a transport, auth or rate-limit failure from the
// embedding service.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return "embedding provider: " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }
