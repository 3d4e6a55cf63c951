package search

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Skotchmaster/local_market/internal/models"
)

// ErrDisabled is returned by Nop.Search so callers can fall back to the database.
var ErrDisabled = errors.New("search index disabled")

type Query struct {
	Text     string
	ShopID   uuid.UUID
	Category string
	From     int
	Size     int
}

type Index interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, q Query) (ids []uuid.UUID, total int64, err error)
}

type Nop struct{}

func (Nop) IndexProduct(context.Context, *models.Product) error { return nil }
func (Nop) DeleteProduct(context.Context, uuid.UUID) error        { return nil }
func (Nop) Search(context.Context, Query) ([]uuid.UUID, int64, error) {
	return nil, 0, ErrDisabled
}
