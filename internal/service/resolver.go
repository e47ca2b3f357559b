package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"menusearch/internal/domain"
	"menusearch/internal/embedding"
	"menusearch/internal/vectorstore"
)

// Resolver answers a single free-text query with the closest menu item or an
// explicit no-match. A hit is accepted only when its score reaches the
// threshold; a nearest neighbor below it is reported as no-match, which keeps
// unrelated items out of the results at the cost of some recall.
type Resolver struct {
	embedder   embedding.Embedder
	index      vectorstore.Index
	collection string
	threshold  float32
	topK       int
	logger     *slog.Logger
}

func NewResolver(embedder embedding.Embedder, index vectorstore.Index, collection string, threshold float32, topK int, logger *slog.Logger) *Resolver {
	if topK <= 0 {
		topK = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		embedder:   embedder,
		index:      index,
		collection: collection,
		threshold:  threshold,
		topK:       topK,
		logger:     logger,
	}
}

// Resolve embeds the query, searches the collection for its nearest neighbors
// and applies the admission threshold. The returned Trace carries the
// diagnostic trail for every outcome, including failures.
func (r *Resolver) Resolve(ctx context.Context, query string) (domain.Resolution, *Trace, error) {
	trace := &Trace{}
	trace.Addf("query: %q", query)

	if r.embedder == nil {
		trace.Addf("embedding provider is not configured")
		return domain.Resolution{}, trace, ErrProviderUnavailable
	}
	if r.index == nil {
		trace.Addf("vector index is not configured")
		return domain.Resolution{}, trace, ErrIndexUnavailable
	}

	info, err := r.index.Info(ctx, r.collection)
	if err != nil {
		if errors.Is(err, vectorstore.ErrCollectionNotFound) {
			trace.Addf("collection %q does not exist; run a rebuild first", r.collection)
			return domain.Resolution{}, trace, fmt.Errorf("%w: %q", ErrCollectionMissing, r.collection)
		}
		trace.Addf("collection check failed: %v", err)
		return domain.Resolution{}, trace, err
	}
	trace.Addf("collection %q holds %d points (dimension %d)", r.collection, info.PointCount, info.Dimension)
	if info.PointCount == 0 {
		trace.Addf("collection is empty; run a rebuild first")
		return domain.Resolution{}, trace, fmt.Errorf("%w: %q", ErrCollectionEmpty, r.collection)
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		trace.Addf("embedding failed: %v", err)
		return domain.Resolution{}, trace, err
	}
	trace.Addf("query vector generated (dimension %d)", len(vector))

	hits, err := r.index.Search(ctx, r.collection, vector, r.topK)
	if err != nil {
		trace.Addf("search failed: %v", err)
		return domain.Resolution{}, trace, err
	}
	for _, h := range hits {
		trace.Addf("candidate %q score=%.4f", h.Payload.ItemName, h.Score)
	}
	if len(hits) == 0 {
		trace.Addf("search returned no candidates")
		return domain.Resolution{}, trace, nil
	}

	top := hits[0]
	if top.Score < r.threshold {
		trace.Addf("best score %.4f is below threshold %.2f; no match", top.Score, r.threshold)
		r.logger.Debug("query below threshold",
			"query", query,
			"best", top.Payload.ItemName,
			"score", top.Score,
			"threshold", r.threshold)
		return domain.Resolution{}, trace, nil
	}

	trace.Addf("accepted %q with score %.4f (threshold %.2f)", top.Payload.ItemName, top.Score, r.threshold)
	return domain.Resolution{
		Matched: true,
		Hit:     domain.SearchHit{Name: top.Payload.ItemName, Score: top.Score},
	}, trace, nil
}
