package cart

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleCart(t *testing.T) Cart {
	t.Helper()
	c, err := Cart{}.Add(item(uuid.New(), "3.10", 2), false)
	require.NoError(t, err)
	return c
}

func assertSameItems(t *testing.T, want, got Cart) {
	t.Helper()
	require.Equal(t, want.Len(), got.Len())
	for i, w := range want.Items() {
		g := got.Items()[i]
		assert.Equal(t, w.ProductID, g.ProductID)
		assert.Equal(t, w.ShopID, g.ShopID)
		assert.Equal(t, w.Quantity, g.Quantity)
		assert.True(t, w.Price.Equal(g.Price), "price %s != %s", w.Price, g.Price)
	}
}

func TestRedisStorage_RoundTripAndTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStorage(client, time.Hour)
	ctx := context.Background()

	empty, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	c := sampleCart(t)
	require.NoError(t, store.Save(ctx, "user-1", c))
	assert.Equal(t, time.Hour, mr.TTL("cart:user-1"))

	got, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assertSameItems(t, c, got)

	mr.FastForward(2 * time.Hour)
	got, err = store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestRedisStorage_SaveEmptyDeletes(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStorage(client, 0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "user-1", sampleCart(t)))
	assert.Equal(t, DefaultTTL, mr.TTL("cart:user-1"))

	require.NoError(t, store.Save(ctx, "user-1", Cart{}))
	assert.False(t, mr.Exists("cart:user-1"))
}

func TestRedisStorage_FromURL(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStorageFromURL("redis://"+mr.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Save(context.Background(), "k", sampleCart(t)))
	assert.True(t, mr.Exists("cart:k"))

	_, err = NewRedisStorageFromURL("not a url", time.Minute)
	assert.Error(t, err)
}

func TestFileStorage(t *testing.T) {
	dir := t.TempDir()
	store := &FileStorage{Dir: filepath.Join(dir, "carts")}
	ctx := context.Background()

	empty, err := store.Load(ctx, "device-1")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	c := sampleCart(t)
	require.NoError(t, store.Save(ctx, "device-1", c))

	got, err := store.Load(ctx, "device-1")
	require.NoError(t, err)
	assertSameItems(t, c, got)

	require.NoError(t, store.Save(ctx, "device-1", Cart{}))
	_, err = os.Stat(filepath.Join(dir, "carts", "device-1.json"))
	assert.True(t, os.IsNotExist(err))

	_, err = store.Load(ctx, "../escape")
	assert.Error(t, err)
}
