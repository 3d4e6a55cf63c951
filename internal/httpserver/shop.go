package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/local_market/internal/models"
	"github.com/Skotchmaster/local_market/internal/service"
	"github.com/Skotchmaster/local_market/internal/transport"
	"github.com/Skotchmaster/local_market/pkg/logging"
)

type ShopHTTP struct {
	Svc *service.ShopService
}

func (h *ShopHTTP) ListShops(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.list_shops")

	shops, err := h.Svc.List(ctx, c.QueryParam("city"), c.QueryParam("category"))
	if err != nil {
		return fail(l, "list_shops_error", err)
	}
	return c.JSON(http.StatusOK, transport.ListResponse{Success: true, Count: len(shops), Data: shops})
}

func (h *ShopHTTP) MyShops(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.my_shops")

	caller, err := callerFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authorized to access this route")
	}

	shops, err := h.Svc.Mine(ctx, caller)
	if err != nil {
		return fail(l, "my_shops_error", err)
	}
	return c.JSON(http.StatusOK, transport.ListResponse{Success: true, Count: len(shops), Data: shops})
}

func (h *ShopHTTP) GetShop(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.get_shop")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "get_shop_error", "id is not a uuid", err)
	}

	shop, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_shop_error", err)
	}
	return c.JSON(http.StatusOK, transport.DataResponse{Success: true, Data: shop})
}

func (h *ShopHTTP) CreateShop(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.create_shop")

	caller, err := callerFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authorized to access this route")
	}

	var req transport.CreateShopRequest
	if err := bindStrict(c, &req); err != nil {
		l.Warnw("create_shop_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	shop, err := h.Svc.Create(ctx, caller, service.ShopInput{
		Name:        req.Name,
		Description: req.Description,
		Address:     models.Address(req.Address),
		Phone:       req.Phone,
		Category:    req.Category,
		OpeningTime: req.OpeningTime,
		ClosingTime: req.ClosingTime,
		Image:       req.Image,
	})
	if err != nil {
		return fail(l, "create_shop_error", err)
	}

	l.Infow("create_shop_success", "shop_id", shop.ID)
	return c.JSON(http.StatusCreated, transport.DataResponse{Success: true, Data: shop})
}

func (h *ShopHTTP) UpdateShop(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.update_shop")

	caller, err := callerFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authorized to access this route")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "update_shop_error", "id is not a uuid", err)
	}

	var req transport.UpdateShopRequest
	if err := bindStrict(c, &req); err != nil {
		l.Warnw("update_shop_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	patch := service.ShopPatch{
		Name:        req.Name,
		Description: req.Description,
		Phone:       req.Phone,
		Category:    req.Category,
		OpeningTime: req.OpeningTime,
		ClosingTime: req.ClosingTime,
		Image:       req.Image,
	}
	if req.Address != nil {
		addr := models.Address(*req.Address)
		patch.Address = &addr
	}

	shop, err := h.Svc.Update(ctx, caller, id, patch)
	if err != nil {
		return fail(l, "update_shop_error", err)
	}

	l.Infow("update_shop_success", "shop_id", shop.ID)
	return c.JSON(http.StatusOK, transport.DataResponse{Success: true, Data: shop})
}
