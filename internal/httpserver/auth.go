package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/local_market/internal/models"
	"github.com/Skotchmaster/local_market/internal/service"
	"github.com/Skotchmaster/local_market/internal/transport"
	"github.com/Skotchmaster/local_market/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := bindStrict(c, &req); err != nil {
		l.Warnw("register_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	user, token, err := h.Svc.Register(ctx, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.Role(req.Role),
	})
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Infow("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, transport.AuthResponse{Success: true, User: user, Token: token})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bindStrict(c, &req); err != nil {
		l.Warnw("login_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	user, token, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err)
	}

	l.Infow("login_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, transport.AuthResponse{Success: true, User: user, Token: token})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	caller, err := callerFrom(c)
	if err != nil {
		l.Warnw("me_error", "status", 401, "reason", "no caller", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "not authorized to access this route")
	}

	user, err := h.Svc.Me(ctx, caller.ID)
	if err != nil {
		return fail(l, "me_error", err)
	}
	return c.JSON(http.StatusOK, transport.AuthResponse{Success: true, User: user})
}
