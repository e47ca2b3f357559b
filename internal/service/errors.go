package service

import "errors"

var (
	// ErrProviderUnavailable reports a missing embedding provider.
	ErrProviderUnavailable = errors.New("embedding provider is not configured")

	// ErrIndexUnavailable reports a missing vector index.
	ErrIndexUnavailable = errors.New("vector index is not configured")

	// ErrCollectionMissing reports a query against a collection that has not
	// been built yet.
	ErrCollectionMissing = errors.New("collection does not exist")

	// ErrCollectionEmpty reports a query against a collection with no points.
	ErrCollectionEmpty = errors.New("collection has no points")

	// ErrEmptyCatalog aborts a rebuild that would replace a populated
	// collection with nothing.
	ErrEmptyCatalog = errors.New("catalog returned no item names")
)
