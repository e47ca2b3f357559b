package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"menusearch/internal/catalog"
	"menusearch/internal/domain"
	"menusearch/internal/embedding"
	"menusearch/internal/vectorstore"
)

// CatalogOpener acquires a catalog connection scoped to one rebuild.
type CatalogOpener func(ctx context.Context) (catalog.Reader, error)

// RebuildStats reports what a completed rebuild wrote.
type RebuildStats struct {
	ItemsIndexed int
}

// Builder performs full rebuilds of the menu collection from the source
// catalog. A rebuild is all-or-nothing: nothing visible changes until the
// replace step, and any failure before it leaves the previous collection
// untouched. Rebuilds are operator-triggered and idempotent to re-run.
type Builder struct {
	openCatalog CatalogOpener
	embedder    embedding.Embedder
	index       vectorstore.Index
	collection  string
	logger      *slog.Logger
}

func NewBuilder(openCatalog CatalogOpener, embedder embedding.Embedder, index vectorstore.Index, collection string, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		openCatalog: openCatalog,
		embedder:    embedder,
		index:       index,
		collection:  collection,
		logger:      logger,
	}
}

// Rebuild reads the distinct item names, embeds them in one batch, and
// replaces the collection, upserting with wait so the new contents are
// durably visible before returning.
func (b *Builder) Rebuild(ctx context.Context) (RebuildStats, error) {
	if b.embedder == nil {
		return RebuildStats{}, ErrProviderUnavailable
	}
	if b.index == nil {
		return RebuildStats{}, ErrIndexUnavailable
	}

	names, err := b.readCatalog(ctx)
	if err != nil {
		return RebuildStats{}, err
	}
	if len(names) == 0 {
		return RebuildStats{}, ErrEmptyCatalog
	}
	b.logger.Info("catalog read", "items", len(names))

	vectors, err := b.embedder.EmbedBatch(ctx, names)
	if err != nil {
		return RebuildStats{}, err
	}
	if len(vectors) != len(names) {
		return RebuildStats{}, fmt.Errorf("embedding count mismatch: %d names, %d vectors", len(names), len(vectors))
	}
	// The authoritative dimension comes from the embedding output; different
	// models emit different dimensions.
	dimension := len(vectors[0])
	if dimension == 0 {
		return RebuildStats{}, errors.New("embedding provider returned zero-dimension vectors")
	}

	points := make([]domain.Point, len(names))
	for i, name := range names {
		points[i] = domain.Point{
			ID:      uuid.NewString(),
			Vector:  vectors[i],
			Payload: domain.Payload{ItemName: name},
		}
	}

	if swapper, ok := b.index.(vectorstore.AliasSwapper); ok {
		err = b.rebuildViaAlias(ctx, swapper, dimension, points)
	} else {
		err = b.rebuildInPlace(ctx, dimension, points)
	}
	if err != nil {
		return RebuildStats{}, err
	}

	b.logger.Info("rebuild complete",
		"collection", b.collection,
		"points", len(points),
		"dimension", dimension)
	return RebuildStats{ItemsIndexed: len(points)}, nil
}

// readCatalog opens the catalog, reads the distinct names and closes the
// connection, including on a failed read. Names are de-duplicated again here
// even though the readers select distinct rows.
func (b *Builder) readCatalog(ctx context.Context) ([]string, error) {
	reader, err := b.openCatalog(ctx)
	if err != nil {
		return nil, err
	}
	names, err := reader.ReadDistinctItemNames(ctx)
	if cerr := reader.Close(); cerr != nil {
		b.logger.Warn("closing catalog failed", "error", cerr)
	}
	if err != nil {
		return nil, err
	}
	return dedupe(names), nil
}

// rebuildInPlace recreates the target collection directly. A concurrent query
// may observe a transiently empty collection between the recreate and the
// upsert.
func (b *Builder) rebuildInPlace(ctx context.Context, dimension int, points []domain.Point) error {
	if err := b.index.Recreate(ctx, b.collection, dimension); err != nil {
		return err
	}
	return b.index.Upsert(ctx, b.collection, points, true)
}

// rebuildViaAlias stages the new contents under a fresh physical collection
// and atomically repoints the alias, closing the empty-collection window of
// the in-place path. The previous physical collection is dropped afterwards.
func (b *Builder) rebuildViaAlias(ctx context.Context, swapper vectorstore.AliasSwapper, dimension int, points []domain.Point) error {
	previous, aliased, err := swapper.ResolveAlias(ctx, b.collection)
	if err != nil {
		return err
	}

	staging := fmt.Sprintf("%s_%s", b.collection, uuid.NewString()[:8])
	if err := b.index.Recreate(ctx, staging, dimension); err != nil {
		return err
	}
	if err := b.index.Upsert(ctx, staging, points, true); err != nil {
		b.dropQuietly(ctx, staging)
		return err
	}

	if !aliased {
		// A physical collection may occupy the alias name (e.g. an earlier
		// in-place rebuild). Qdrant forbids an alias sharing a collection's
		// name, so it goes now — only after the staging collection is durably
		// populated, keeping the live data intact if staging fails.
		if _, err := b.index.Info(ctx, b.collection); err == nil {
			if err := b.index.Drop(ctx, b.collection); err != nil {
				b.dropQuietly(ctx, staging)
				return err
			}
		} else if !errors.Is(err, vectorstore.ErrCollectionNotFound) {
			b.dropQuietly(ctx, staging)
			return err
		}
	}

	if err := swapper.SwapAlias(ctx, b.collection, staging); err != nil {
		b.dropQuietly(ctx, staging)
		return err
	}
	if aliased && previous != "" {
		if err := b.index.Drop(ctx, previous); err != nil {
			b.logger.Warn("dropping previous collection failed", "collection", previous, "error", err)
		}
	}
	return nil
}

func (b *Builder) dropQuietly(ctx context.Context, collection string) {
	if err := b.index.Drop(ctx, collection); err != nil {
		b.logger.Warn("dropping staging collection failed", "collection", collection, "error", err)
	}
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
