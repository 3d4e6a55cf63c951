package timeout

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

// Store bounds the request context so every store call made while serving
// the request gives up after d.
func Store(d time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), d)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
