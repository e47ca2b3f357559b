package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"menusearch/internal/domain"
	"menusearch/internal/vectorstore"
)

// Store is a minimal REST client to Qdrant. Collections are addressed by name
// per call, so one client serves both the live collection and rebuild staging
// collections. All collections are created with cosine distance.
type Store struct {
	url    string
	apiKey string
	client *http.Client
}

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *Store) Info(ctx context.Context, collection string) (domain.CollectionInfo, error) {
	var resp struct {
		Result struct {
			PointsCount int `json:"points_count"`
			Config      struct {
				Params struct {
					Vectors struct {
						Size     int    `json:"size"`
						Distance string `json:"distance"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	err := s.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/collections/%s", s.url, collection), nil, &resp)
	if err != nil {
		if errors.Is(err, errNotFound) {
			err = vectorstore.ErrCollectionNotFound
		}
		return domain.CollectionInfo{}, &vectorstore.StoreError{Op: "info", Collection: collection, Err: err}
	}
	return domain.CollectionInfo{
		PointCount: resp.Result.PointsCount,
		Dimension:  resp.Result.Config.Params.Vectors.Size,
		Distance:   resp.Result.Config.Params.Vectors.Distance,
	}, nil
}

func (s *Store) Recreate(ctx context.Context, collection string, dimension int) error {
	if dimension <= 0 {
		return &vectorstore.StoreError{Op: "recreate", Collection: collection, Err: errors.New("invalid dimension")}
	}
	err := s.doJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, collection), nil, nil)
	if err != nil && !errors.Is(err, errNotFound) {
		return &vectorstore.StoreError{Op: "recreate", Collection: collection, Err: err}
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := s.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", s.url, collection), body, nil); err != nil {
		return &vectorstore.StoreError{Op: "recreate", Collection: collection, Err: err}
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, collection string, points []domain.Point, wait bool) error {
	reqPoints := make([]map[string]any, len(points))
	for i, p := range points {
		reqPoints[i] = map[string]any{
			"id":     p.ID,
			"vector": p.Vector,
			"payload": map[string]any{
				"item_name": p.Payload.ItemName,
			},
		}
	}
	body := map[string]any{"points": reqPoints}
	url := fmt.Sprintf("%s/collections/%s/points?wait=%t", s.url, collection, wait)
	if err := s.doJSON(ctx, http.MethodPut, url, body, nil); err != nil {
		if errors.Is(err, errNotFound) {
			err = vectorstore.ErrCollectionNotFound
		}
		return &vectorstore.StoreError{Op: "upsert", Collection: collection, Err: err}
	}
	return nil
}

func (s *Store) Search(ctx context.Context, collection string, vector []float32, topK int) ([]domain.ScoredPoint, error) {
	if topK <= 0 {
		topK = 1
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      any     `json:"id"`
			Score   float32 `json:"score"`
			Payload struct {
				ItemName string `json:"item_name"`
			} `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", s.url, collection)
	if err := s.doJSON(ctx, http.MethodPost, url, req, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			err = vectorstore.ErrCollectionNotFound
		}
		return nil, &vectorstore.StoreError{Op: "search", Collection: collection, Err: err}
	}
	results := make([]domain.ScoredPoint, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.ScoredPoint{
			ID:      fmt.Sprint(r.ID),
			Payload: domain.Payload{ItemName: r.Payload.ItemName},
			Score:   r.Score,
		})
	}
	return results, nil
}

func (s *Store) Drop(ctx context.Context, collection string) error {
	err := s.doJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, collection), nil, nil)
	if err != nil {
		if errors.Is(err, errNotFound) {
			err = vectorstore.ErrCollectionNotFound
		}
		return &vectorstore.StoreError{Op: "drop", Collection: collection, Err: err}
	}
	return nil
}

// ResolveAlias implements vectorstore.AliasSwapper.
func (s *Store) ResolveAlias(ctx context.Context, alias string) (string, bool, error) {
	var resp struct {
		Result struct {
			Aliases []struct {
				AliasName      string `json:"alias_name"`
				CollectionName string `json:"collection_name"`
			} `json:"aliases"`
		} `json:"result"`
	}
	if err := s.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/aliases", s.url), nil, &resp); err != nil {
		return "", false, &vectorstore.StoreError{Op: "resolve alias", Collection: alias, Err: err}
	}
	for _, a := range resp.Result.Aliases {
		if a.AliasName == alias {
			return a.CollectionName, true, nil
		}
	}
	return "", false, nil
}

// SwapAlias implements vectorstore.AliasSwapper. The delete and create run in
// one alias-update request, which Qdrant applies atomically.
func (s *Store) SwapAlias(ctx context.Context, alias, collection string) error {
	_, exists, err := s.ResolveAlias(ctx, alias)
	if err != nil {
		return err
	}
	var actions []map[string]any
	if exists {
		actions = append(actions, map[string]any{
			"delete_alias": map[string]any{"alias_name": alias},
		})
	}
	actions = append(actions, map[string]any{
		"create_alias": map[string]any{
			"collection_name": collection,
			"alias_name":      alias,
		},
	})
	body := map[string]any{"actions": actions}
	if err := s.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/aliases", s.url), body, nil); err != nil {
		return &vectorstore.StoreError{Op: "swap alias", Collection: alias, Err: err}
	}
	return nil
}

var errNotFound = errors.New("not found")

func (s *Store) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode >= 300 {
		// Qdrant reports the cause (including dimension mismatches) in
		// status.error; keep it in the returned error.
		var apiErr struct {
			Status struct {
				Error string `json:"error"`
			} `json:"status"`
		}
		if derr := json.NewDecoder(resp.Body).Decode(&apiErr); derr == nil && apiErr.Status.Error != "" {
			return fmt.Errorf("qdrant %s failed: %s", method, apiErr.Status.Error)
		}
		return fmt.Errorf("qdrant %s failed: %s", method, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
