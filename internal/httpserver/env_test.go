package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/local_market/internal/events"
	"github.com/Skotchmaster/local_market/internal/middleware/ratelimit"
	"github.com/Skotchmaster/local_market/internal/models"
	"github.com/Skotchmaster/local_market/internal/repo"
	"github.com/Skotchmaster/local_market/internal/service"
	"github.com/Skotchmaster/local_market/pkg/hash"
)

var jwtSecret = []byte("test-jwt-secret")

type testEnv struct {
	T    *testing.T
	E    *echo.Echo
	DB   *gorm.DB
	Repo *repo.GormRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	hash.Cost = bcrypt.MinCost

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repo.Migrate(db))

	r := &repo.GormRepo{DB: db}

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.Validator = NewValidator()

	Register(e, &Deps{
		AuthHandler:    &AuthHTTP{Svc: &service.AuthService{Repo: r, JWTSecret: jwtSecret, TokenTTL: time.Hour}},
		ShopHandler:    &ShopHTTP{Svc: &service.ShopService{Repo: r}},
		ProductHandler: &ProductHTTP{Svc: &service.ProductService{Repo: r}},
		OrderHandler:   &OrderHTTP{Svc: &service.OrderService{Repo: r, Events: events.Nop{}}},
		JWTSecret:      jwtSecret,
		AuthLimiter:    ratelimit.New(1000, 1000).Middleware(),
		Ready:          r.Ping,
	})

	return &testEnv{T: t, E: e, DB: db, Repo: r}
}

// do sends body as raw JSON when it is a string and marshals it otherwise.
func (env *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(env.T, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) register(name string, role models.Role) (string, models.User) {
	env.T.Helper()
	rec := env.do(http.MethodPost, "/api/auth/register", map[string]any{
		"name":     name,
		"email":    name + "@example.com",
		"password": "secret1",
		"role":     role,
	}, "")
	require.Equal(env.T, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Success bool        `json:"success"`
		User    models.User `json:"user"`
		Token   string      `json:"token"`
	}
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(env.T, resp.Success)
	return resp.Token, resp.User
}

func (env *testEnv) seedShop(owner models.User, name string) *models.Shop {
	env.T.Helper()
	s := &models.Shop{
		Name:        name,
		Description: "local shop",
		Address:     models.Address{Street: "1 Main St", City: "Springfield", State: "IL", Zip: "62701"},
		Phone:       "555-0100",
		Category:    "grocery",
		OpeningTime: "08:00",
		ClosingTime: "20:00",
		OwnerID:     owner.ID,
	}
	require.NoError(env.T, env.Repo.CreateShop(context.Background(), s))
	return s
}

func (env *testEnv) seedProduct(shop *models.Shop, name, price string, stock int) *models.Product {
	env.T.Helper()
	p := &models.Product{ShopID: shop.ID, Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(env.T, env.Repo.CreateProduct(context.Background(), p))
	return p
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
