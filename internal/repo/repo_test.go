package repo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/local_market/internal/models"
)

func newSQLiteRepo(t *testing.T) *GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return &GormRepo{DB: db}
}

func newMockRepo(t *testing.T) (*GormRepo, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return &GormRepo{DB: db}, mock
}

var decrementSQL = regexp.QuoteMeta(`UPDATE "products" SET "stock"=stock - $1 WHERE id = $2 AND stock >= $3`)

func TestDecrementStock_ConditionalUpdate(t *testing.T) {
	r, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(decrementSQL).
		WithArgs(3, id, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := r.DecrementStock(context.Background(), id, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStock_NotEnoughStock(t *testing.T) {
	r, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(decrementSQL).
		WithArgs(10, id, 10).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err := r.DecrementStock(context.Background(), id, 10)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStock_SQLite(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	prod := &models.Product{ShopID: uuid.New(), Name: "milk", Price: decimal.NewFromInt(10), Stock: 5}
	require.NoError(t, r.CreateProduct(ctx, prod))

	ok, err := r.DecrementStock(ctx, prod.ID, 3)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.DecrementStock(ctx, prod.ID, 3)
	require.NoError(t, err)
	require.False(t, ok)

	got, err := r.GetProduct(ctx, prod.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
}

func TestRunInTx_RollsBack(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	err := r.RunInTx(ctx, func(tx *GormRepo) error {
		require.NoError(t, tx.CreateUser(ctx, &models.User{Name: "a", Email: "a@x.io", PasswordHash: "h", Role: models.RoleCustomer}))
		return gorm.ErrInvalidData
	})
	require.ErrorIs(t, err, gorm.ErrInvalidData)

	_, err = r.GetUserByEmail(ctx, "a@x.io")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductsByIDs_KeepsOrder(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()
	shopID := uuid.New()

	a := &models.Product{ShopID: shopID, Name: "a", Price: decimal.NewFromInt(1)}
	b := &models.Product{ShopID: shopID, Name: "b", Price: decimal.NewFromInt(2)}
	require.NoError(t, r.CreateProduct(ctx, a))
	require.NoError(t, r.CreateProduct(ctx, b))

	got, err := r.ProductsByIDs(ctx, []uuid.UUID{b.ID, uuid.New(), a.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)
}

func TestListOrders_FiltersAndPreloads(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	owner := &models.User{Name: "owner", Email: "o@x.io", PasswordHash: "h", Role: models.RoleShopOwner}
	buyer := &models.User{Name: "buyer", Email: "b@x.io", PasswordHash: "h", Role: models.RoleCustomer}
	require.NoError(t, r.CreateUser(ctx, owner))
	require.NoError(t, r.CreateUser(ctx, buyer))

	shop := &models.Shop{Name: "corner", OwnerID: owner.ID, Category: "grocery"}
	other := &models.Shop{Name: "other", OwnerID: uuid.New(), Category: "grocery"}
	require.NoError(t, r.CreateShop(ctx, shop))
	require.NoError(t, r.CreateShop(ctx, other))

	prod := &models.Product{ShopID: shop.ID, Name: "bread", Price: decimal.NewFromInt(3), Stock: 10}
	require.NoError(t, r.CreateProduct(ctx, prod))

	base := time.Now().UTC().Add(-time.Hour)
	for i, shopID := range []uuid.UUID{shop.ID, shop.ID, other.ID} {
		o := &models.Order{
			UserID:      buyer.ID,
			ShopID:      shopID,
			TotalAmount: decimal.NewFromInt(3),
			PickupTime:  base,
			Status:      models.OrderPending,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			Lines:       []models.OrderLine{{ProductID: prod.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(3)}},
		}
		require.NoError(t, r.CreateOrder(ctx, o))
	}

	byOwner, err := r.ListOrders(ctx, OrderFilter{OwnerID: owner.ID})
	require.NoError(t, err)
	require.Len(t, byOwner, 2)
	assert.True(t, byOwner[0].CreatedAt.After(byOwner[1].CreatedAt))
	require.NotNil(t, byOwner[0].User)
	assert.Equal(t, "buyer", byOwner[0].User.Name)
	require.NotNil(t, byOwner[0].Shop)
	assert.Equal(t, "corner", byOwner[0].Shop.Name)
	require.Len(t, byOwner[0].Lines, 1)
	require.NotNil(t, byOwner[0].Lines[0].Product)
	assert.Equal(t, "bread", byOwner[0].Lines[0].Product.Name)

	byUser, err := r.ListOrders(ctx, OrderFilter{UserID: buyer.ID})
	require.NoError(t, err)
	assert.Len(t, byUser, 3)

	byShop, err := r.ListOrders(ctx, OrderFilter{UserID: buyer.ID, ShopID: other.ID})
	require.NoError(t, err)
	assert.Len(t, byShop, 1)
}

func TestUpdateOrderStatus_Missing(t *testing.T) {
	r := newSQLiteRepo(t)
	err := r.UpdateOrderStatus(context.Background(), uuid.New(), models.OrderReady)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
