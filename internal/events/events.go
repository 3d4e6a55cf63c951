package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/local_market/internal/models"
)

type Type string

const (
	OrderCreated       Type = "order_created"
	OrderStatusChanged Type = "order_status_changed"
)

type OrderEvent struct {
	Type           Type               `json:"type"`
	OrderID        uuid.UUID          `json:"orderID"`
	ShopID         uuid.UUID          `json:"shopID"`
	UserID         uuid.UUID          `json:"userID"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previousStatus,omitempty"`
	TotalAmount    decimal.Decimal    `json:"totalAmount"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

func NewOrderEvent(t Type, o *models.Order) OrderEvent {
	return OrderEvent{
		Type:        t,
		OrderID:     o.ID,
		ShopID:      o.ShopID,
		UserID:      o.UserID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
	Close() error
}

// Nop is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
func (Nop) Close() error                              { return nil }
