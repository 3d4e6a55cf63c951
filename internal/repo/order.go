package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/local_market/internal/models"
)

// OrderFilter narrows ListOrders. Zero values are ignored; OwnerID matches
// orders of every shop owned by that user.
type OrderFilter struct {
	UserID  uuid.UUID
	ShopID  uuid.UUID
	OwnerID uuid.UUID
}

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderView loads an order together with the user, shop and product
// names shown to clients.
func (r *GormRepo) GetOrderView(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := withViewPreloads(r.DB.WithContext(ctx)).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	db := r.DB.WithContext(ctx)
	q := withViewPreloads(db).Model(&models.Order{})
	if f.UserID != uuid.Nil {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.ShopID != uuid.Nil {
		q = q.Where("shop_id = ?", f.ShopID)
	}
	if f.OwnerID != uuid.Nil {
		owned := db.Model(&models.Shop{}).Select("id").Where("owner_id = ?", f.OwnerID)
		q = q.Where("shop_id IN (?)", owned)
	}

	orders := []models.Order{}
	if err := q.Order("created_at DESC").Order("id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func withViewPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name", "email") }).
		Preload("Shop", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name") }).
		Preload("Lines", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("Lines.Product", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name") })
}
