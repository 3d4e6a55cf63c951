package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/local_market/internal/breaker"
	"github.com/Skotchmaster/local_market/internal/models"
)

const mapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "shop":        {"type": "keyword"},
      "name":        {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "description": {"type": "text"},
      "category":    {"type": "keyword"},
      "status":      {"type": "keyword"},
      "price":       {"type": "scaled_float", "scaling_factor": 100},
      "image":       {"type": "keyword", "index": false}
    }
  }
}`

// document mirrors the catalog fields clients filter on. Stock stays in the
// database only.
type document struct {
	ID          string  `json:"id"`
	Shop        string  `json:"shop"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

type Elastic struct {
	es      *elasticsearch.Client
	index   string
	breaker *breaker.Breaker
}

func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return client, nil
}

func NewElastic(es *elasticsearch.Client, index string) *Elastic {
	return &Elastic{es: es, index: index, breaker: breaker.New("elasticsearch-" + index)}
}

// EnsureIndex creates the product index with its mapping when it does not exist yet.
func (e *Elastic) EnsureIndex(ctx context.Context) error {
	res, err := e.es.Indices.Exists([]string{e.index}, e.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = e.es.Indices.Create(e.index,
		e.es.Indices.Create.WithContext(ctx),
		e.es.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("es: create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es: create index: %s", readError(res.Body, res.Status()))
	}
	return nil
}

func (e *Elastic) IndexProduct(ctx context.Context, p *models.Product) error {
	price, _ := p.Price.Float64()
	body, err := json.Marshal(document{
		ID:          p.ID.String(),
		Shop:        p.ShopID.String(),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Status:      string(p.Status),
		Price:       price,
		Image:       p.Image,
	})
	if err != nil {
		return err
	}

	return e.breaker.Do(func() error {
		res, err := e.es.Index(e.index, bytes.NewReader(body),
			e.es.Index.WithContext(ctx),
			e.es.Index.WithDocumentID(p.ID.String()),
		)
		if err != nil {
			return fmt.Errorf("es: index product: %w", err)
		}
		defer res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("es: index product: %s", readError(res.Body, res.Status()))
		}
		return nil
	})
}

func (e *Elastic) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return e.breaker.Do(func() error {
		res, err := e.es.Delete(e.index, id.String(), e.es.Delete.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("es: delete product: %w", err)
		}
		defer res.Body.Close()
		if res.IsError() && res.StatusCode != http.StatusNotFound {
			return fmt.Errorf("es: delete product: %s", readError(res.Body, res.Status()))
		}
		return nil
	})
}

// Search runs every clause in filter context: matching documents are not
// scored, they come back sorted by name.
func (e *Elastic) Search(ctx context.Context, q Query) ([]uuid.UUID, int64, error) {
	filters := []map[string]any{}
	if q.Text != "" {
		filters = append(filters, map[string]any{
			"match": map[string]any{
				"name": map[string]any{"query": q.Text, "operator": "and"},
			},
		})
	}
	if q.ShopID != uuid.Nil {
		filters = append(filters, map[string]any{"term": map[string]any{"shop": q.ShopID.String()}})
	}
	if q.Category != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"category": q.Category}})
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"filter": filters},
		},
		"sort": []map[string]any{
			{"name.keyword": "asc"},
			{"id": "asc"},
		},
		"_source":          false,
		"track_total_hits": true,
		"from":             q.From,
		"size":             q.Size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, 0, err
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}

	err := e.breaker.Do(func() error {
		res, err := e.es.Search(
			e.es.Search.WithContext(ctx),
			e.es.Search.WithIndex(e.index),
			e.es.Search.WithBody(&buf),
		)
		if err != nil {
			return fmt.Errorf("es: search: %w", err)
		}
		defer res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("es: search: %s", readError(res.Body, res.Status()))
		}
		return json.NewDecoder(res.Body).Decode(&r)
	})
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, r.Hits.Total.Value, nil
}

func readError(body io.Reader, status string) string {
	b, _ := io.ReadAll(io.LimitReader(body, 1024))
	if len(b) == 0 {
		return status
	}
	return status + ": " + string(b)
}
