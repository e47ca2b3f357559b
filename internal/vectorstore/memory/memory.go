package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"menusearch/internal/domain"
	"menusearch/internal/vectorstore"
)

// Store is an in-memory vector index using brute-force cosine similarity.
// Recreate replaces a collection in one step under the lock, so readers never
// observe a partially built collection.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	dimension int
	points    []domain.Point
}

func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) Info(ctx context.Context, name string) (domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return domain.CollectionInfo{}, &vectorstore.StoreError{Op: "info", Collection: name, Err: vectorstore.ErrCollectionNotFound}
	}
	return domain.CollectionInfo{
		PointCount: len(c.points),
		Dimension:  c.dimension,
		Distance:   "Cosine",
	}, nil
}

func (s *Store) Recreate(ctx context.Context, name string, dimension int) error {
	if dimension <= 0 {
		return &vectorstore.StoreError{Op: "recreate", Collection: name, Err: errors.New("invalid dimension")}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = &collection{dimension: dimension}
	return nil
}

func (s *Store) Upsert(ctx context.Context, name string, points []domain.Point, wait bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return &vectorstore.StoreError{Op: "upsert", Collection: name, Err: vectorstore.ErrCollectionNotFound}
	}
	for _, p := range points {
		if len(p.Vector) != c.dimension {
			return &vectorstore.StoreError{Op: "upsert", Collection: name, Err: vectorstore.ErrDimensionMismatch}
		}
	}
	for _, p := range points {
		replaced := false
		for i := range c.points {
			if c.points[i].ID == p.ID {
				c.points[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			c.points = append(c.points, p)
		}
	}
	return nil
}

func (s *Store) Search(ctx context.Context, name string, vector []float32, topK int) ([]domain.ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, &vectorstore.StoreError{Op: "search", Collection: name, Err: vectorstore.ErrCollectionNotFound}
	}
	if len(vector) != c.dimension {
		return nil, &vectorstore.StoreError{Op: "search", Collection: name, Err: vectorstore.ErrDimensionMismatch}
	}
	if topK <= 0 {
		topK = 1
	}
	results := make([]domain.ScoredPoint, 0, len(c.points))
	for _, p := range c.points {
		results = append(results, domain.ScoredPoint{
			ID:      p.ID,
			Payload: p.Payload,
			Score:   cosine(p.Vector, vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func (s *Store) Drop(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		return &vectorstore.StoreError{Op: "drop", Collection: name, Err: vectorstore.ErrCollectionNotFound}
	}
	delete(s.collections, name)
	return nil
}

func cosine(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
