package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/local_market/internal/models"
	"github.com/Skotchmaster/local_market/internal/repo"
	"github.com/Skotchmaster/local_market/internal/search"
	"github.com/Skotchmaster/local_market/pkg/logging"
)

const maxProductName = 100

type ProductService struct {
	Repo  *repo.GormRepo
	Index search.Index
}

type ProductInput struct {
	ShopID      uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Stock       int
	Status      models.ProductStatus
	Image       string
}

type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	Stock       *int
	Status      *models.ProductStatus
	Image       *string
}

type SearchInput struct {
	Text     string
	ShopID   uuid.UUID
	Category string
	Offset   int
	Limit    int
}

func (s *ProductService) List(ctx context.Context, shopID uuid.UUID, category string) ([]models.Product, error) {
	_, items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{ShopID: shopID, Category: category}, 0, 0)
	return items, err
}

// Search asks the index for matching ids and loads the rows from the
// database, so stock and price are always current. Without an index it
// falls back to a name match in the database.
func (s *ProductService) Search(ctx context.Context, in SearchInput) (int64, []models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.search")

	ids, total, err := s.index().Search(ctx, search.Query{
		Text:     strings.TrimSpace(in.Text),
		ShopID:   in.ShopID,
		Category: in.Category,
		From:     in.Offset,
		Size:     in.Limit,
	})
	if err == nil {
		items, err := s.Repo.ProductsByIDs(ctx, ids)
		return total, items, err
	}
	if !errors.Is(err, search.ErrDisabled) {
		l.Warnw("search_index_error", "reason", "falling back to database", "error", err)
	}

	return s.Repo.ListProducts(ctx, repo.ProductFilter{
		ShopID:   in.ShopID,
		Category: in.Category,
		NameLike: strings.TrimSpace(in.Text),
	}, in.Offset, in.Limit)
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product not found")
	}
	return prod, nil
}

func (s *ProductService) Create(ctx context.Context, caller Caller, in ProductInput) (*models.Product, error) {
	shop, err := s.Repo.GetShop(ctx, in.ShopID)
	if err != nil {
		return nil, notFound(err, "shop not found")
	}
	if shop.OwnerID != caller.ID {
		return nil, fmt.Errorf("%w: not authorized to add products to this shop", ErrForbidden)
	}

	prod := &models.Product{
		ShopID:      in.ShopID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Stock:       in.Stock,
		Status:      in.Status,
		Image:       in.Image,
	}
	if prod.Status == "" {
		prod.Status = models.ProductAvailable
	}
	if err := validateProduct(prod); err != nil {
		return nil, err
	}

	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}
	s.sync(ctx, prod)
	return prod, nil
}

// Update locks the row, applies the patch and writes back only the patched
// columns.
func (s *ProductService) Update(ctx context.Context, caller Caller, id uuid.UUID, p ProductPatch) (*models.Product, error) {
	var prod *models.Product
	err := s.Repo.RunInTx(ctx, func(tx *repo.GormRepo) error {
		cur, err := tx.LockProduct(ctx, id)
		if err != nil {
			return notFound(err, "product not found")
		}
		if err := checkOwner(ctx, tx, caller, cur); err != nil {
			return err
		}

		setIf(&cur.Name, p.Name)
		setIf(&cur.Description, p.Description)
		setIf(&cur.Price, p.Price)
		setIf(&cur.Category, p.Category)
		setIf(&cur.Stock, p.Stock)
		setIf(&cur.Status, p.Status)
		setIf(&cur.Image, p.Image)
		cur.Name = strings.TrimSpace(cur.Name)

		if err := validateProduct(cur); err != nil {
			return err
		}
		if err := tx.UpdateProductColumns(ctx, cur, p.columns()...); err != nil {
			return err
		}
		prod = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sync(ctx, prod)
	return prod, nil
}

func (p ProductPatch) columns() []string {
	var cols []string
	add := func(set bool, col string) {
		if set {
			cols = append(cols, col)
		}
	}
	add(p.Name != nil, "name")
	add(p.Description != nil, "description")
	add(p.Price != nil, "price")
	add(p.Category != nil, "category")
	add(p.Stock != nil, "stock")
	add(p.Status != nil, "status")
	add(p.Image != nil, "image")
	return cols
}

func (s *ProductService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return err
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return notFound(err, "product not found")
	}

	if err := s.index().DeleteProduct(ctx, id); err != nil {
		logging.FromContext(ctx).Warnw("search_unindex_error", "product_id", id, "error", err)
	}
	return nil
}

func (s *ProductService) owned(ctx context.Context, caller Caller, id uuid.UUID) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product not found")
	}
	if err := checkOwner(ctx, s.Repo, caller, prod); err != nil {
		return nil, err
	}
	return prod, nil
}

func checkOwner(ctx context.Context, r *repo.GormRepo, caller Caller, prod *models.Product) error {
	shop, err := r.GetShop(ctx, prod.ShopID)
	if err != nil {
		return notFound(err, "shop not found")
	}
	if shop.OwnerID != caller.ID {
		return fmt.Errorf("%w: not authorized to modify this product", ErrForbidden)
	}
	return nil
}

func (s *ProductService) sync(ctx context.Context, p *models.Product) {
	if err := s.index().IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warnw("search_index_error", "product_id", p.ID, "error", err)
	}
}

func (s *ProductService) index() search.Index {
	if s.Index == nil {
		return search.Nop{}
	}
	return s.Index
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: please add a product name", ErrValidation)
	case len([]rune(p.Name)) > maxProductName:
		return fmt.Errorf("%w: name cannot be more than %d characters", ErrValidation, maxProductName)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	case !p.Status.Valid():
		return fmt.Errorf("%w: unknown product status %q", ErrValidation, p.Status)
	}
	return nil
}
