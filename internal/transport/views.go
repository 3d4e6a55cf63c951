package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/local_market/internal/models"
)

type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type ListResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    any  `json:"data"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type PageResponse struct {
	Success bool     `json:"success"`
	Count   int      `json:"count"`
	Data    any      `json:"data"`
	Meta    PageMeta `json:"meta"`
}

type AuthResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
	Token   string       `json:"token,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name,omitempty"`
	Email string    `json:"email,omitempty"`
}

type ShopRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name,omitempty"`
}

type ProductRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name,omitempty"`
}

type OrderLineView struct {
	Product  ProductRef      `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type OrderView struct {
	ID          uuid.UUID          `json:"id"`
	User        UserRef            `json:"user"`
	Shop        ShopRef            `json:"shop"`
	Products    []OrderLineView    `json:"products"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	PickupTime  time.Time          `json:"pickupTime"`
	Status      models.OrderStatus `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// NewOrderView renders whatever relations were preloaded; missing ones fall back to bare ids.
func NewOrderView(o *models.Order) OrderView {
	v := OrderView{
		ID:          o.ID,
		User:        UserRef{ID: o.UserID},
		Shop:        ShopRef{ID: o.ShopID},
		Products:    make([]OrderLineView, 0, len(o.Lines)),
		TotalAmount: o.TotalAmount,
		PickupTime:  o.PickupTime,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
	}
	if o.User != nil {
		v.User.Name = o.User.Name
		v.User.Email = o.User.Email
	}
	if o.Shop != nil {
		v.Shop.Name = o.Shop.Name
	}
	for _, l := range o.Lines {
		line := OrderLineView{
			Product:  ProductRef{ID: l.ProductID},
			Quantity: l.Quantity,
			Price:    l.UnitPrice,
		}
		if l.Product != nil {
			line.Product.Name = l.Product.Name
		}
		v.Products = append(v.Products, line)
	}
	return v
}

func NewOrderViews(orders []models.Order) []OrderView {
	out := make([]OrderView, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderView(&orders[i]))
	}
	return out
}
