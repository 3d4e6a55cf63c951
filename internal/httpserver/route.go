package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/local_market/internal/metrics"
	authmw "github.com/Skotchmaster/local_market/internal/middleware/auth"
	"github.com/Skotchmaster/local_market/internal/models"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	ShopHandler    *ShopHTTP
	ProductHandler *ProductHTTP
	OrderHandler   *OrderHTTP

	JWTSecret []byte
	// AuthLimiter guards register and login; nil disables it.
	AuthLimiter echo.MiddlewareFunc
	// Ready backs /health/ready, typically a database ping.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", metrics.Handler())

	requireAuth := authmw.Middleware(d.JWTSecret)
	customer := authmw.RequireRole(string(models.RoleCustomer))
	owner := authmw.RequireRole(string(models.RoleShopOwner))

	api := e.Group("/api")

	auth := api.Group("/auth")
	limited := []echo.MiddlewareFunc{}
	if d.AuthLimiter != nil {
		limited = append(limited, d.AuthLimiter)
	}
	auth.POST("/register", d.AuthHandler.Register, limited...)
	auth.POST("/login", d.AuthHandler.Login, limited...)
	auth.GET("/me", d.AuthHandler.Me, requireAuth)

	shops := api.Group("/shops")
	shops.GET("", d.ShopHandler.ListShops)
	shops.GET("/mine", d.ShopHandler.MyShops, requireAuth, owner)
	shops.GET("/:id", d.ShopHandler.GetShop)
	shops.POST("", d.ShopHandler.CreateShop, requireAuth, owner)
	shops.PUT("/:id", d.ShopHandler.UpdateShop, requireAuth, owner)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.ListProducts)
	products.GET("/search", d.ProductHandler.SearchProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, requireAuth, owner)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, requireAuth, owner)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, requireAuth, owner)

	orders := api.Group("/orders", requireAuth)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.POST("", d.OrderHandler.CreateOrder, customer)
	orders.PUT("/:id/status", d.OrderHandler.UpdateOrderStatus, owner)
}
