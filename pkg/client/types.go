package client

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// Shop mirrors the server shape. Lat and Lng are only set by deployments
// that geocode shop addresses.
type Shop struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Address     Address   `json:"address"`
	Phone       string    `json:"phone"`
	Category    string    `json:"category"`
	OpeningTime string    `json:"openingTime"`
	ClosingTime string    `json:"closingTime"`
	Owner       uuid.UUID `json:"owner"`
	Image       string    `json:"image"`
	Rating      float64   `json:"rating"`
	Lat         *float64  `json:"lat,omitempty"`
	Lng         *float64  `json:"lng,omitempty"`
}

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Shop        uuid.UUID       `json:"shop"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	Status      string          `json:"status"`
	Image       string          `json:"image"`
}

type Ref struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name,omitempty"`
	Email string    `json:"email,omitempty"`
}

type OrderLine struct {
	Product  Ref             `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type Order struct {
	ID          uuid.UUID       `json:"id"`
	User        Ref             `json:"user"`
	Shop        Ref             `json:"shop"`
	Products    []OrderLine     `json:"products"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	PickupTime  time.Time       `json:"pickupTime"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}
