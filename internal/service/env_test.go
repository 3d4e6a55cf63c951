package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/local_market/internal/events"
	"github.com/Skotchmaster/local_market/internal/models"
	"github.com/Skotchmaster/local_market/internal/repo"
	"github.com/Skotchmaster/local_market/pkg/hash"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) All() []events.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.OrderEvent(nil), p.events...)
}

type testEnv struct {
	T      *testing.T
	DB     *gorm.DB
	Repo   *repo.GormRepo
	Orders *OrderService
	Auth   *AuthService
	Shops  *ShopService
	Prods  *ProductService
	Events *recordingPublisher
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
	pub := &recordingPublisher{}
	return &testEnv{
		T:      t,
		DB:     db,
		Repo:   r,
		Orders: &OrderService{Repo: r, Events: pub},
		Auth:   &AuthService{Repo: r, JWTSecret: []byte("test-jwt-secret"), TokenTTL: time.Hour},
		Shops:  &ShopService{Repo: r},
		Prods:  &ProductService{Repo: r},
		Events: pub,
	}
}

func (env *testEnv) user(name string, role models.Role) Caller {
	env.T.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(env.T, env.Repo.CreateUser(context.Background(), u))
	return Caller{ID: u.ID, Role: role}
}

func (env *testEnv) shop(owner Caller, name string) *models.Shop {
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

func (env *testEnv) product(shop *models.Shop, name string, price string, stock int) *models.Product {
	env.T.Helper()
	p := &models.Product{
		ShopID: shop.ID,
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
	}
	require.NoError(env.T, env.Repo.CreateProduct(context.Background(), p))
	return p
}

func (env *testEnv) stock(id any) int {
	env.T.Helper()
	var p models.Product
	require.NoError(env.T, env.DB.Where("id = ?", id).First(&p).Error)
	return p.Stock
}

func (env *testEnv) orderCount() int64 {
	env.T.Helper()
	var n int64
	require.NoError(env.T, env.DB.Model(&models.Order{}).Count(&n).Error)
	return n
}
