package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chatdir/chatdir/internal/config"
	"github.com/chatdir/chatdir/internal/domain"
)

// RedisListingCache implements ListingCache on a redis instance.
type RedisListingCache struct {
	client *redis.Client
	prefix string
}

func NewRedisListingCache(cfg config.RedisConfig, prefix string) (*RedisListingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisListingCache{
		client: client,
		prefix: prefix,
	}, nil
}

func (c *RedisListingCache) roomsKey() string {
	return fmt.Sprintf("%s:rooms:list", c.prefix)
}

func (c *RedisListingCache) usersKey() string {
	return fmt.Sprintf("%s:users:list", c.prefix)
}

func (c *RedisListingCache) GetRooms(ctx context.Context) ([]domain.Room, error) {
	var rooms []domain.Room
	if err := c.get(ctx, c.roomsKey(), &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *RedisListingCache) SetRooms(ctx context.Context, rooms []domain.Room, ttl time.Duration) error {
	return c.set(ctx, c.roomsKey(), rooms, ttl)
}

func (c *RedisListingCache) InvalidateRooms(ctx context.Context) error {
	return c.del(ctx, c.roomsKey())
}

func (c *RedisListingCache) GetUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.get(ctx, c.usersKey(), &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *RedisListingCache) SetUsers(ctx context.Context, users []domain.User, ttl time.Duration) error {
	return c.set(ctx, c.usersKey(), users, ttl)
}

func (c *RedisListingCache) InvalidateUsers(ctx context.Context) error {
	return c.del(ctx, c.usersKey())
}

func (c *RedisListingCache) get(ctx context.Context, key string, out interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get from redis: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return nil
}

func (c *RedisListingCache) set(ctx context.Context, key string, val interface{}, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

func (c *RedisListingCache) del(ctx context.Context, keys ...string) error {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

func (c *RedisListingCache) Close() error {
	return c.client.Close()
}
