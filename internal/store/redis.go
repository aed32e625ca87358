package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/gistcdn/internal/shortener"
)

// RedisStore is a Redis implementation of shortener.Repository.
// All links live in one hash; HSETNX makes Reserve atomic.
type RedisStore struct {
	client  *redis.Client
	hashKey string
}

// NewRedisStore creates a new Redis-backed link store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		hashKey: "links",
	}
}

func (r *RedisStore) Get(ctx context.Context, code shortener.Code) (string, error) {
	url, err := r.client.HGet(ctx, r.hashKey, string(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", shortener.ErrNotFound
		}

		return "", err
	}

	return url, nil
}

func (r *RedisStore) Reserve(ctx context.Context, link *shortener.ShortLink) error {
	ok, err := r.client.HSetNX(ctx, r.hashKey, string(link.Code), link.LongURL).Result()
	if err != nil {
		return err
	}

	if !ok {
		return shortener.ErrCodeInUse
	}

	return nil
}

var _ shortener.Repository = (*RedisStore)(nil)
