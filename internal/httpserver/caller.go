package httpserver

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/local_market/internal/middleware/auth"
	"github.com/Skotchmaster/local_market/internal/models"
	"github.com/Skotchmaster/local_market/internal/service"
)

func callerFrom(c echo.Context) (service.Caller, error) {
	s, ok := c.Get(authmw.CtxUserID).(string)
	if !ok || s == "" {
		return service.Caller{}, errors.New("no caller on context")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return service.Caller{}, err
	}
	role, _ := c.Get(authmw.CtxRole).(string)
	return service.Caller{ID: id, Role: models.Role(role)}, nil
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}
