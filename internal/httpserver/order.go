package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/local_market/internal/service"
	"github.com/Skotchmaster/local_market/internal/transport"
	"github.com/Skotchmaster/local_market/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	caller, err := callerFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authorized to access this route")
	}
	shopID, err := optionalUUID(c, "shopId")
	if err != nil {
		return badRequest(l, "list_orders_error", "shopId is not a uuid", err)
	}

	orders, err := h.Svc.ListOrders(ctx, caller, shopID)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.ListResponse{
		Success: true,
		Count:   len(orders),
		Data:    transport.NewOrderViews(orders),
	})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	caller, err := callerFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authorized to access this route")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "get_order_error", "id is not a uuid", err)
	}

	order, err := h.Svc.GetOrder(ctx, caller, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, transport.DataResponse{Success: true, Data: transport.NewOrderView(order)})
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	caller, err := callerFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authorized to access this route")
	}

	var req transport.CreateOrderRequest
	if err := bindStrict(c, &req); err != nil {
		l.Warnw("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	in := service.CreateOrderInput{
		ShopID:     req.Shop,
		PickupTime: req.PickupTime,
		Lines:      make([]service.OrderLineInput, 0, len(req.Products)),
	}
	for _, p := range req.Products {
		in.Lines = append(in.Lines, service.OrderLineInput{ProductID: p.Product, Quantity: p.Quantity})
	}

	order, err := h.Svc.CreateOrder(ctx, caller, in)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Infow("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, transport.DataResponse{Success: true, Data: transport.NewOrderView(order)})
}

func (h *OrderHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	caller, err := callerFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authorized to access this route")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "update_status_error", "id is not a uuid", err)
	}

	var req transport.UpdateOrderStatusRequest
	if err := bindStrict(c, &req); err != nil {
		l.Warnw("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	order, err := h.Svc.UpdateOrderStatus(ctx, caller, id, req.Status)
	if err != nil {
		return fail(l, "update_status_error", err)
	}

	l.Infow("update_status_success", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusOK, transport.DataResponse{Success: true, Data: transport.NewOrderView(order)})
}
