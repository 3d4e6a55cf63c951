package timeout

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetsDeadline(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	var deadline time.Time
	h := Store(250 * time.Millisecond)(func(c echo.Context) error {
		var ok bool
		deadline, ok = c.Request().Context().Deadline()
		require.True(t, ok)
		return nil
	})
	require.NoError(t, h(c))
	assert.WithinDuration(t, time.Now().Add(250*time.Millisecond), deadline, 200*time.Millisecond)
}
