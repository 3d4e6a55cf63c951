package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrShopMismatch = errors.New("cart holds items from another shop")
	ErrInvalidItem  = errors.New("invalid cart item")
	ErrEmpty        = errors.New("cart is empty")
)

type Item struct {
	ProductID uuid.UUID       `json:"productId"`
	ShopID    uuid.UUID       `json:"shopId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

// Cart is an immutable snapshot. Every transition returns a new Cart and
// leaves the receiver untouched. All items belong to one shop.
type Cart struct {
	items []Item
}

func (c Cart) Add(item Item, confirmSwitch bool) (Cart, error) {
	if item.ProductID == uuid.Nil || item.ShopID == uuid.Nil || item.Quantity < 1 {
		return c, fmt.Errorf("%w: product %s quantity %d", ErrInvalidItem, item.ProductID, item.Quantity)
	}

	base := c.items
	if len(base) > 0 && base[0].ShopID != item.ShopID {
		if !confirmSwitch {
			return c, ErrShopMismatch
		}
		base = nil
	}

	out := make([]Item, 0, len(base)+1)
	merged := false
	for _, it := range base {
		if it.ProductID == item.ProductID {
			it.Quantity += item.Quantity
			merged = true
		}
		out = append(out, it)
	}
	if !merged {
		out = append(out, item)
	}
	return Cart{items: out}, nil
}

func (c Cart) Remove(productID uuid.UUID) Cart {
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	return Cart{items: out}
}

// UpdateQuantity sets the quantity of one product. Zero or less removes it.
func (c Cart) UpdateQuantity(productID uuid.UUID, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(productID)
	}
	out := make([]Item, len(c.items))
	copy(out, c.items)
	for i := range out {
		if out[i].ProductID == productID {
			out[i].Quantity = quantity
		}
	}
	return Cart{items: out}
}

func (c Cart) Clear() Cart { return Cart{} }

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// ShopID is uuid.Nil for an empty cart.
func (c Cart) ShopID() uuid.UUID {
	if len(c.items) == 0 {
		return uuid.Nil
	}
	return c.items[0].ShopID
}

func (c Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c Cart) Len() int      { return len(c.items) }
func (c Cart) IsEmpty() bool { return len(c.items) == 0 }

type OrderLine struct {
	Product  uuid.UUID       `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// OrderRequest is the createOrder body. Price and TotalAmount are what the
// shopper saw; the server recomputes both.
type OrderRequest struct {
	Shop        uuid.UUID       `json:"shop"`
	Products    []OrderLine     `json:"products"`
	PickupTime  time.Time       `json:"pickupTime"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func (c Cart) ToOrderRequest(pickup time.Time) (OrderRequest, error) {
	if c.IsEmpty() {
		return OrderRequest{}, ErrEmpty
	}
	if pickup.IsZero() {
		return OrderRequest{}, errors.New("pickup time is required")
	}

	lines := make([]OrderLine, 0, len(c.items))
	for _, it := range c.items {
		lines = append(lines, OrderLine{Product: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return OrderRequest{
		Shop:        c.ShopID(),
		Products:    lines,
		PickupTime:  pickup.UTC(),
		TotalAmount: c.Total(),
	}, nil
}

func (c Cart) MarshalJSON() ([]byte, error) {
	items := c.items
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(items)
}

// UnmarshalJSON replays every stored item through Add so a snapshot that
// mixes shops or carries bad quantities is rejected.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	var out Cart
	for _, it := range items {
		next, err := out.Add(it, false)
		if err != nil {
			return fmt.Errorf("decode cart: %w", err)
		}
		out = next
	}
	*c = out
	return nil
}
