package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleShopOwner Role = "shop_owner"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleShopOwner
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"           json:"id"`
	Name         string    `gorm:"not null"                       json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"           json:"email"`
	PasswordHash string    `gorm:"not null"                       json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null"      json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Address struct {
	Street string `json:"street"`
	City   string `gorm:"index" json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

type Shop struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"                    json:"id"`
	Name        string    `gorm:"not null"                                json:"name"`
	Description string    `gorm:"not null"                                json:"description"`
	Address     Address   `gorm:"embedded;embeddedPrefix:address_"        json:"address"`
	Phone       string    `gorm:"not null"                                json:"phone"`
	Category    string    `gorm:"index;not null"                          json:"category"`
	OpeningTime string    `gorm:"size:5;not null"                         json:"openingTime"`
	ClosingTime string    `gorm:"size:5;not null"                         json:"closingTime"`
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null"                json:"owner"`
	Image       string    `gorm:"not null;default:''"                     json:"image"`
	Rating      float64   `gorm:"not null;default:0"                      json:"rating"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (s *Shop) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type ProductStatus string

const (
	ProductAvailable   ProductStatus = "available"
	ProductUnavailable ProductStatus = "unavailable"
)

func (s ProductStatus) Valid() bool {
	return s == ProductAvailable || s == ProductUnavailable
}

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"                         json:"id"`
	ShopID      uuid.UUID       `gorm:"type:uuid;index;not null"                     json:"shop"`
	Name        string          `gorm:"size:100;not null"                            json:"name"`
	Description string          `gorm:"not null;default:''"                          json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"                  json:"price"`
	Category    string          `gorm:"index;not null;default:''"                    json:"category"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0"          json:"stock"`
	Status      ProductStatus   `gorm:"type:varchar(20);not null;default:available"  json:"status"`
	Image       string          `gorm:"not null;default:''"                          json:"image"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProductAvailable
	}
	return nil
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderReady     OrderStatus = "ready"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderReady, OrderCancelled:
		return true
	}
	return false
}

type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	ShopID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	Lines       []OrderLine     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PickupTime  time.Time       `gorm:"not null"`
	Status      OrderStatus     `gorm:"type:varchar(20);index;not null;default:pending"`
	CreatedAt   time.Time       `gorm:"index"`

	// read side only, filled by preload
	User *User `gorm:"foreignKey:UserID"`
	Shop *Shop `gorm:"foreignKey:ShopID"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderLine.UnitPrice is the product price at the time the order was placed.
type OrderLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Position  int             `gorm:"not null;default:0"`
	ProductID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Quantity  int             `gorm:"not null;check:quantity > 0"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (l *OrderLine) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
