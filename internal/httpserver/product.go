package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/local_market/internal/models"
	"github.com/Skotchmaster/local_market/internal/service"
	"github.com/Skotchmaster/local_market/internal/transport"
	"github.com/Skotchmaster/local_market/internal/util"
	"github.com/Skotchmaster/local_market/pkg/logging"
)

type ProductHTTP struct {
	Svc *service.ProductService
}

// optionalUUID parses an optional query parameter; empty means no filter.
func optionalUUID(c echo.Context, name string) (uuid.UUID, error) {
	v := c.QueryParam(name)
	if v == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(v)
}

func (h *ProductHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list_products")

	shopID, err := optionalUUID(c, "shopId")
	if err != nil {
		return badRequest(l, "list_products_error", "shopId is not a uuid", err)
	}

	items, err := h.Svc.List(ctx, shopID, c.QueryParam("category"))
	if err != nil {
		return fail(l, "list_products_error", err)
	}
	return c.JSON(http.StatusOK, transport.ListResponse{Success: true, Count: len(items), Data: items})
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	shopID, err := optionalUUID(c, "shopId")
	if err != nil {
		return badRequest(l, "search_products_error", "shopId is not a uuid", err)
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	total, items, err := h.Svc.Search(ctx, service.SearchInput{
		Text:     c.QueryParam("q"),
		ShopID:   shopID,
		Category: c.QueryParam("category"),
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return fail(l, "search_products_error", err)
	}

	l.Infow("search_products_success", "total", total)
	return c.JSON(http.StatusOK, transport.PageResponse{
		Success: true,
		Count:   len(items),
		Data:    items,
		Meta: transport.PageMeta{
			Page:       page,
			Size:       limit,
			Total:      total,
			TotalPages: util.TotalPages(total, limit),
			HasPrev:    page > 1,
			HasNext:    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "get_product_error", "id is not a uuid", err)
	}

	prod, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, transport.DataResponse{Success: true, Data: prod})
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	caller, err := callerFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authorized to access this route")
	}

	var req transport.CreateProductRequest
	if err := bindStrict(c, &req); err != nil {
		l.Warnw("create_product_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	prod, err := h.Svc.Create(ctx, caller, service.ProductInput{
		ShopID:      req.Shop,
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
		Status:      models.ProductStatus(req.Status),
		Image:       req.Image,
	})
	if err != nil {
		return fail(l, "create_product_error", err)
	}

	l.Infow("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, transport.DataResponse{Success: true, Data: prod})
}

func (h *ProductHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_product")

	caller, err := callerFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authorized to access this route")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "update_product_error", "id is not a uuid", err)
	}

	var req transport.UpdateProductRequest
	if err := bindStrict(c, &req); err != nil {
		l.Warnw("update_product_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	patch := service.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
		Image:       req.Image,
	}
	if req.Status != nil {
		st := models.ProductStatus(*req.Status)
		patch.Status = &st
	}

	prod, err := h.Svc.Update(ctx, caller, id, patch)
	if err != nil {
		return fail(l, "update_product_error", err)
	}

	l.Infow("update_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, transport.DataResponse{Success: true, Data: prod})
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	caller, err := callerFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authorized to access this route")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "delete_product_error", "id is not a uuid", err)
	}

	if err := h.Svc.Delete(ctx, caller, id); err != nil {
		return fail(l, "delete_product_error", err)
	}

	l.Infow("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.DataResponse{Success: true, Data: struct{}{}})
}
