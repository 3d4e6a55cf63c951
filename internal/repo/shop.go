package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/local_market/internal/models"
)

type ShopFilter struct {
	City     string
	Category string
	OwnerID  uuid.UUID
}

func (r *GormRepo) CreateShop(ctx context.Context, shop *models.Shop) error {
	return r.DB.WithContext(ctx).Create(shop).Error
}

func (r *GormRepo) GetShop(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *GormRepo) ListShops(ctx context.Context, f ShopFilter) ([]models.Shop, error) {
	q := r.DB.WithContext(ctx).Model(&models.Shop{})
	if f.City != "" {
		q = q.Where("address_city = ?", f.City)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.OwnerID != uuid.Nil {
		q = q.Where("owner_id = ?", f.OwnerID)
	}

	shops := []models.Shop{}
	if err := q.Order("name ASC").Order("id ASC").Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

func (r *GormRepo) SaveShop(ctx context.Context, shop *models.Shop) error {
	return r.DB.WithContext(ctx).Save(shop).Error
}
