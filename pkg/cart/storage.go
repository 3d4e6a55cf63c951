package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage persists cart snapshots by key (a user id or a device id).
// Loading a key that was never saved yields an empty cart.
type Storage interface {
	Load(ctx context.Context, key string) (Cart, error)
	Save(ctx context.Context, key string, c Cart) error
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("invalid cart key %q", key)
	}
	return nil
}

// FileStorage keeps one JSON file per key under Dir. It survives restarts
// of the client process.
type FileStorage struct {
	Dir string
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

func (s *FileStorage) Load(ctx context.Context, key string) (Cart, error) {
	if err := checkKey(key); err != nil {
		return Cart{}, err
	}
	raw, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return Cart{}, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("read cart: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (s *FileStorage) Save(ctx context.Context, key string, c Cart) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if c.IsEmpty() {
		if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove cart: %w", err)
		}
		return nil
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("create cart dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cart: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cart: %w", err)
	}
	return os.Rename(tmp.Name(), s.path(key))
}

const DefaultTTL = 24 * time.Hour

// RedisStorage keeps carts as JSON strings that expire TTL after the last save.
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStorage{client: client, prefix: "cart:", ttl: ttl}
}

// NewRedisStorageFromURL parses a redis:// URL and checks the connection.
func NewRedisStorageFromURL(redisURL string, ttl time.Duration) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStorage(client, ttl), nil
}

func (s *RedisStorage) Load(ctx context.Context, key string) (Cart, error) {
	if err := checkKey(key); err != nil {
		return Cart{}, err
	}
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (s *RedisStorage) Save(ctx context.Context, key string, c Cart) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if c.IsEmpty() {
		return s.client.Del(ctx, s.prefix+key).Err()
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}
