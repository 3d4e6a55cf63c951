package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/Skotchmaster/local_market/internal/events"
	"github.com/Skotchmaster/local_market/internal/metrics"
	"github.com/Skotchmaster/local_market/internal/models"
	"github.com/Skotchmaster/local_market/internal/repo"
	"github.com/Skotchmaster/local_market/internal/telemetry"
	"github.com/Skotchmaster/local_market/pkg/logging"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

type OrderLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type CreateOrderInput struct {
	ShopID     uuid.UUID
	Lines      []OrderLineInput
	PickupTime time.Time
}

// CreateOrder places a pending order for one shop. Prices are taken from the
// catalog, never from the caller. Stock of every line is reserved in the same
// transaction that inserts the order, so either everything is committed or
// nothing is.
func (s *OrderService) CreateOrder(ctx context.Context, caller Caller, in CreateOrderInput) (*models.Order, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "order.create",
		trace.WithAttributes(attribute.String("shop_id", in.ShopID.String())))
	defer span.End()
	l := logging.FromContext(ctx).With("svc", "order.create")

	lines, err := mergeLines(in)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:     caller.ID,
		ShopID:     in.ShopID,
		PickupTime: in.PickupTime.UTC(),
		Status:     models.OrderPending,
	}

	err = s.Repo.RunInTx(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.GetShop(ctx, in.ShopID); err != nil {
			return notFound(err, "shop %s not found", in.ShopID)
		}

		total := decimal.Zero
		order.Lines = make([]models.OrderLine, 0, len(lines))
		for i, line := range lines {
			prod, err := tx.GetProduct(ctx, line.ProductID)
			if err != nil {
				return notFound(err, "product %s not found", line.ProductID)
			}
			if prod.ShopID != in.ShopID {
				return fmt.Errorf("%w: product %s does not belong to shop %s", ErrValidation, prod.ID, in.ShopID)
			}
			if prod.Stock < line.Quantity {
				return fmt.Errorf("%w: insufficient stock for product %s", ErrInsufficientStock, prod.Name)
			}

			total = total.Add(prod.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			order.Lines = append(order.Lines, models.OrderLine{
				Position:  i,
				ProductID: prod.ID,
				Quantity:  line.Quantity,
				UnitPrice: prod.Price,
			})
		}
		order.TotalAmount = total

		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		for _, line := range order.Lines {
			ok, err := tx.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				// a concurrent order took the stock between the read and the update
				return fmt.Errorf("%w: insufficient stock for product %s", ErrInsufficientStock, line.ProductID)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			metrics.StockRejections.Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "create order failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("order_id", order.ID.String()))

	metrics.OrdersCreated.Inc()
	amount, _ := order.TotalAmount.Float64()
	metrics.OrderAmount.Observe(amount)
	l.Infow("order_created", "order_id", order.ID, "shop_id", order.ShopID, "lines", len(order.Lines), "total", order.TotalAmount.String())

	s.publish(ctx, events.NewOrderEvent(events.OrderCreated, order))
	return order, nil
}

// mergeLines sums quantities of repeated products, keeping first-seen order.
func mergeLines(in CreateOrderInput) ([]OrderLineInput, error) {
	if in.ShopID == uuid.Nil {
		return nil, fmt.Errorf("%w: shop is required", ErrValidation)
	}
	if in.PickupTime.IsZero() {
		return nil, fmt.Errorf("%w: pickupTime is required", ErrValidation)
	}
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: at least one product is required", ErrValidation)
	}

	idx := make(map[uuid.UUID]int, len(in.Lines))
	out := make([]OrderLineInput, 0, len(in.Lines))
	for _, line := range in.Lines {
		if line.ProductID == uuid.Nil {
			return nil, fmt.Errorf("%w: product is required", ErrValidation)
		}
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
		}
		if i, ok := idx[line.ProductID]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		idx[line.ProductID] = len(out)
		out = append(out, line)
	}
	return out, nil
}

// UpdateOrderStatus lets the owner of the order's shop set any of the known
// statuses. There is no transition graph.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, caller Caller, id uuid.UUID, status string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update_status")

	next := models.OrderStatus(status)
	if !next.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "order %s not found", id)
	}

	owns, err := s.ownsShop(ctx, caller, order.ShopID)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, fmt.Errorf("%w: not authorized to update this order", ErrForbidden)
	}

	prev := order.Status
	if err := s.Repo.UpdateOrderStatus(ctx, id, next); err != nil {
		return nil, notFound(err, "order %s not found", id)
	}
	// reload with lines, product names and user/shop refs for the response
	order, err = s.Repo.GetOrderView(ctx, id)
	if err != nil {
		return nil, notFound(err, "order %s not found", id)
	}

	metrics.OrderStatusChanges.WithLabelValues(string(next)).Inc()
	l.Infow("order_status_changed", "order_id", id, "from", prev, "to", next)

	ev := events.NewOrderEvent(events.OrderStatusChanged, order)
	ev.PreviousStatus = prev
	s.publish(ctx, ev)
	return order, nil
}

// ListOrders picks the visible set by precedence: an explicit shop first,
// then the caller's role.
func (s *OrderService) ListOrders(ctx context.Context, caller Caller, shopID uuid.UUID) ([]models.Order, error) {
	var f repo.OrderFilter

	switch {
	case shopID != uuid.Nil:
		shop, err := s.Repo.GetShop(ctx, shopID)
		if err != nil {
			return nil, notFound(err, "shop %s not found", shopID)
		}
		switch {
		case shop.OwnerID == caller.ID:
			f = repo.OrderFilter{ShopID: shopID}
		case caller.IsCustomer():
			f = repo.OrderFilter{ShopID: shopID, UserID: caller.ID}
		default:
			return nil, fmt.Errorf("%w: not authorized to view orders of this shop", ErrForbidden)
		}
	case caller.IsCustomer():
		f = repo.OrderFilter{UserID: caller.ID}
	case caller.IsShopOwner():
		f = repo.OrderFilter{OwnerID: caller.ID}
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrForbidden, caller.Role)
	}

	return s.Repo.ListOrders(ctx, f)
}

func (s *OrderService) GetOrder(ctx context.Context, caller Caller, id uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetOrderView(ctx, id)
	if err != nil {
		return nil, notFound(err, "order %s not found", id)
	}

	switch {
	case caller.IsCustomer():
		if order.UserID != caller.ID {
			return nil, fmt.Errorf("%w: not authorized to view this order", ErrForbidden)
		}
	case caller.IsShopOwner():
		owns, err := s.ownsShop(ctx, caller, order.ShopID)
		if err != nil {
			return nil, err
		}
		if !owns {
			return nil, fmt.Errorf("%w: not authorized to view this order", ErrForbidden)
		}
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrForbidden, caller.Role)
	}
	return order, nil
}

func (s *OrderService) ownsShop(ctx context.Context, caller Caller, shopID uuid.UUID) (bool, error) {
	shop, err := s.Repo.GetShop(ctx, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return shop.OwnerID == caller.ID, nil
}

// publish is best effort: the order is already committed.
func (s *OrderService) publish(ctx context.Context, ev events.OrderEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		logging.FromContext(ctx).Warnw("publish_order_event_error", "type", ev.Type, "order_id", ev.OrderID, "error", err)
	}
}
