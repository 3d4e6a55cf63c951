package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/Skotchmaster/local_market/pkg/cart"
)

// AuthRequiredError means the server rejected the stored token. Next is the
// path the caller was trying to reach, so a UI can send the user back there
// after logging in.
type AuthRequiredError struct {
	Next string
}

func (e *AuthRequiredError) Error() string {
	return "login required to access " + e.Next
}

// APIError carries the server's error message verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	http *resty.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetRetryCount(0).
			SetHeader("Content-Type", "application/json"),
	}
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Logout() { c.SetToken("") }

type envelope[T any] struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Data    T      `json:"data"`
	User    *User  `json:"user"`
	Token   string `json:"token"`
	Error   string `json:"error"`
}

type errorBody struct {
	Error string `json:"error"`
}

// login and register answer 401 for bad credentials, which is not a
// session problem.
var credentialPaths = map[string]bool{
	"/api/auth/login":    true,
	"/api/auth/register": true,
}

func send[T any](ctx context.Context, c *Client, method, path string, body any, query url.Values) (*envelope[T], error) {
	out := &envelope[T]{}
	req := c.http.R().
		SetContext(ctx).
		SetResult(out).
		SetError(&errorBody{})
	if tok := c.Token(); tok != "" {
		req.SetAuthToken(tok)
	}
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode() == http.StatusUnauthorized && !credentialPaths[path] {
		c.Logout()
		return nil, &AuthRequiredError{Next: path}
	}
	if resp.IsError() {
		msg := resp.Status()
		if eb, ok := resp.Error().(*errorBody); ok && eb.Error != "" {
			msg = eb.Error
		}
		return nil, &APIError{Status: resp.StatusCode(), Message: msg}
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (*User, error) {
	out, err := send[struct{}](ctx, c, http.MethodPost, "/api/auth/register", in, nil)
	if err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return out.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	body := map[string]string{"email": email, "password": password}
	out, err := send[struct{}](ctx, c, http.MethodPost, "/api/auth/login", body, nil)
	if err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return out.User, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	out, err := send[struct{}](ctx, c, http.MethodGet, "/api/auth/me", nil, nil)
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) ListShops(ctx context.Context, city, category string) ([]Shop, error) {
	q := url.Values{}
	if city != "" {
		q.Set("city", city)
	}
	if category != "" {
		q.Set("category", category)
	}
	out, err := send[[]Shop](ctx, c, http.MethodGet, "/api/shops", nil, q)
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) ListProducts(ctx context.Context, shopID uuid.UUID, category string) ([]Product, error) {
	q := url.Values{}
	if shopID != uuid.Nil {
		q.Set("shopId", shopID.String())
	}
	if category != "" {
		q.Set("category", category)
	}
	out, err := send[[]Product](ctx, c, http.MethodGet, "/api/products", nil, q)
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	out, err := send[Product](ctx, c, http.MethodGet, "/api/products/"+id.String(), nil, nil)
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ListOrders returns the caller's own orders, or those of shopID when set.
func (c *Client) ListOrders(ctx context.Context, shopID uuid.UUID) ([]Order, error) {
	q := url.Values{}
	if shopID != uuid.Nil {
		q.Set("shopId", shopID.String())
	}
	out, err := send[[]Order](ctx, c, http.MethodGet, "/api/orders", nil, q)
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreateOrder submits the cart for pickup. The cart itself is not cleared;
// callers save an empty cart once this returns without error.
func (c *Client) CreateOrder(ctx context.Context, crt cart.Cart, pickup time.Time) (*Order, error) {
	req, err := crt.ToOrderRequest(pickup)
	if err != nil {
		return nil, err
	}
	out, err := send[Order](ctx, c, http.MethodPost, "/api/orders", req, nil)
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (*Order, error) {
	body := map[string]string{"status": status}
	out, err := send[Order](ctx, c, http.MethodPut, "/api/orders/"+id.String()+"/status", body, nil)
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}
