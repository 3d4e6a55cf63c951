package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/local_market/pkg/cart"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginStoresToken(t *testing.T) {
	userID := uuid.New()
	var seenAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["password"] != "secret1" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "invalid credentials"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"user":    map[string]any{"id": userID, "name": "ann", "email": body["email"], "role": "customer"},
				"token":   "tok-123",
			})
		case "/api/auth/me":
			seenAuth = r.Header.Get("Authorization")
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": map[string]any{"id": userID}})
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.Login(ctx, "ann@example.com", "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid credentials", apiErr.Message)
	assert.Empty(t, c.Token())

	user, err := c.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "tok-123", c.Token())

	_, err = c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", seenAuth)
}

func TestUnauthorizedKeepsDestination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "invalid or expired token"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("stale")

	_, err := c.ListOrders(context.Background(), uuid.Nil)
	var authErr *AuthRequiredError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "/api/orders", authErr.Next)
	assert.Empty(t, c.Token())
}

func TestCreateOrderFromCart(t *testing.T) {
	shopID, productID := uuid.New(), uuid.New()
	var got cart.OrderRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"data": map[string]any{
				"id":          uuid.New(),
				"shop":        map[string]any{"id": shopID},
				"products":    []any{map[string]any{"product": map[string]any{"id": productID}, "quantity": 3, "price": 10}},
				"totalAmount": 30,
				"status":      "pending",
			},
		})
	}))
	defer srv.Close()

	crt, err := cart.Cart{}.Add(cart.Item{
		ProductID: productID,
		ShopID:    shopID,
		Name:      "apples",
		Price:     decimal.NewFromInt(10),
		Quantity:  3,
	}, false)
	require.NoError(t, err)

	c := New(srv.URL)
	c.SetToken("tok")
	order, err := c.CreateOrder(context.Background(), crt, time.Date(2030, 5, 1, 17, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, shopID, got.Shop)
	require.Len(t, got.Products, 1)
	assert.Equal(t, 3, got.Products[0].Quantity)
	assert.Equal(t, "pending", order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(30)))

	_, err = c.CreateOrder(context.Background(), cart.Cart{}, time.Now())
	assert.ErrorIs(t, err, cart.ErrEmpty)
}

func TestServerMessageSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/shops":
			assert.Equal(t, "Springfield", r.URL.Query().Get("city"))
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": 1, "data": []any{map[string]any{"id": uuid.New(), "name": "corner"}}})
		default:
			writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "error": "not authorized to update this order"})
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	shops, err := c.ListShops(context.Background(), "Springfield", "")
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, "corner", shops[0].Name)

	_, err = c.UpdateOrderStatus(context.Background(), uuid.New(), "ready")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "not authorized to update this order", apiErr.Message)
}

func TestFilterByDistance(t *testing.T) {
	ptr := func(f float64) *float64 { return &f }
	shops := []Shop{
		{Name: "far", Lat: ptr(48.8566), Lng: ptr(2.3522)},
		{Name: "near", Lat: ptr(51.5080), Lng: ptr(-0.1281)},
		{Name: "unknown"},
		{Name: "mid", Lat: ptr(51.7520), Lng: ptr(-1.2577)},
	}

	got := FilterByDistance(shops, 51.5074, -0.1278, 100)
	require.Len(t, got, 2)
	assert.Equal(t, "near", got[0].Name)
	assert.Equal(t, "mid", got[1].Name)

	assert.InDelta(t, 344, DistanceKm(51.5074, -0.1278, 48.8566, 2.3522), 2)
}
