package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"menusearch/internal/domain"
)

// Index persists vectors in named collections and supports similarity search.
// All collections use cosine similarity. Implementations are safe for
// concurrent use; no isolation is provided between concurrent callers of the
// same collection.
type Index interface {
	// Info returns the state of a collection, or an error wrapping
	// ErrCollectionNotFound if it does not exist.
	Info(ctx context.Context, collection string) (domain.CollectionInfo, error)

	// Recreate destroys any existing collection of that name and creates an
	// empty one with the given vector dimension.
	Recreate(ctx context.Context, collection string, dimension int) error

	// Upsert inserts or overwrites points by id. With wait set, the call does
	// not return until the store acknowledges durability of the write.
	Upsert(ctx context.Context, collection string, points []domain.Point, wait bool) error

	// Search returns up to topK points ordered by descending similarity to
	// the query vector. Empty if the collection has no points.
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]domain.ScoredPoint, error)

	// Drop deletes a collection and its points.
	Drop(ctx context.Context, collection string) error
}

// AliasSwapper is an optional Index capability: collections can be addressed
// through an alias that is repointed atomically, letting a rebuild stage its
// data under a fresh physical collection before making it visible.
type AliasSwapper interface {
	// ResolveAlias returns the physical collection an alias points to, if any.
	ResolveAlias(ctx context.Context, alias string) (collection string, ok bool, err error)

	// SwapAlias atomically points alias at collection, replacing any previous
	// target.
	SwapAlias(ctx context.Context, alias, collection string) error
}

var (
	// ErrCollectionNotFound reports an operation against an absent collection.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrDimensionMismatch reports a vector whose length differs from the
	// collection's configured dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// StoreError wraps a vector store failure with the operation and collection
// it concerns.
type StoreError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vector store %s (collection %q): %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
