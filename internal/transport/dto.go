package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"omitempty,oneof=customer shop_owner"`
}

// LoginRequest is checked by the service so a missing field gets the same message as the web client expects.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AddressRequest struct {
	Street string `json:"street" validate:"required"`
	City   string `json:"city"   validate:"required"`
	State  string `json:"state"  validate:"required"`
	Zip    string `json:"zip"    validate:"required"`
}

type CreateShopRequest struct {
	Name        string         `json:"name"        validate:"required"`
	Description string         `json:"description" validate:"required"`
	Address     AddressRequest `json:"address"`
	Phone       string         `json:"phone"       validate:"required"`
	Category    string         `json:"category"    validate:"required"`
	OpeningTime string         `json:"openingTime" validate:"required"`
	ClosingTime string         `json:"closingTime" validate:"required"`
	Image       string         `json:"image"`
}

type UpdateShopRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Address     *AddressRequest `json:"address"`
	Phone       *string         `json:"phone"`
	Category    *string         `json:"category"`
	OpeningTime *string         `json:"openingTime"`
	ClosingTime *string         `json:"closingTime"`
	Image       *string         `json:"image"`
}

type CreateProductRequest struct {
	Shop        uuid.UUID        `json:"shop"        validate:"required"`
	Name        string           `json:"name"        validate:"required,max=100"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"       validate:"required"`
	Category    string           `json:"category"`
	Stock       int              `json:"stock"       validate:"gte=0"`
	Status      string           `json:"status"      validate:"omitempty,oneof=available unavailable"`
	Image       string           `json:"image"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,max=100"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Stock       *int             `json:"stock"       validate:"omitempty,gte=0"`
	Status      *string          `json:"status"      validate:"omitempty,oneof=available unavailable"`
	Image       *string          `json:"image"`
}

// OrderLineRequest.Price is accepted for compatibility with clients that
// echo the cart price. The server never reads it.
type OrderLineRequest struct {
	Product  uuid.UUID        `json:"product"  validate:"required"`
	Quantity int              `json:"quantity" validate:"required,min=1"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// CreateOrderRequest.TotalAmount is ignored the same way; the total is
// always computed from catalog prices.
type CreateOrderRequest struct {
	Shop        uuid.UUID          `json:"shop"       validate:"required"`
	Products    []OrderLineRequest `json:"products"   validate:"required,min=1,dive"`
	PickupTime  time.Time          `json:"pickupTime" validate:"required"`
	TotalAmount *decimal.Decimal   `json:"totalAmount,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}
