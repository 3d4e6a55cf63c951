package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Skotchmaster/local_market/internal/service"
	"github.com/Skotchmaster/local_market/internal/transport"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrInsufficientStock, http.StatusBadRequest},
	{service.ErrInvalidStatus, http.StatusBadRequest},
	{service.ErrUnauthenticated, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
}

// fail logs a service error under event and converts it into the HTTP
// error the client sees. Store details never reach the client.
func fail(l *zap.SugaredLogger, event string, err error) error {
	for _, m := range statusBySentinel {
		if errors.Is(err, m.err) {
			msg := publicMessage(err, m.err)
			l.Warnw(event, "status", m.status, "reason", msg, "error", err)
			return echo.NewHTTPError(m.status, msg)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		l.Errorw(event, "status", http.StatusServiceUnavailable, "reason", "store timeout", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "service unavailable, retry")
	}

	l.Errorw(event, "status", http.StatusInternalServerError, "reason", "internal error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

// publicMessage strips the sentinel prefix: "not found: order x not found" -> "order x not found".
func publicMessage(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return rest
	}
	return msg
}

func badRequest(l *zap.SugaredLogger, event, reason string, err error) error {
	l.Warnw(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}

// ErrorHandler renders every error as {"success": false, "error": "..."}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "internal error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		default:
			msg = http.StatusText(status)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, transport.ErrorResponse{Success: false, Error: msg})
}
