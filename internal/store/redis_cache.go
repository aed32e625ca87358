package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/gistcdn/internal/shortener"
	"go.uber.org/zap"
)

// RedisCacheRepository wraps a Repository with Redis caching for reads.
// Links are never updated or deleted, so cached entries cannot go stale
// unless the backing document is edited by hand.
type RedisCacheRepository struct {
	store  shortener.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl time.Duration, logger *zap.Logger,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "link:",
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the long URL for code, checking the cache first.
func (r *RedisCacheRepository) Get(ctx context.Context, code shortener.Code) (string, error) {
	if url, err := r.client.Get(ctx, r.prefix+string(code)).Result(); err == nil {
		return url, nil
	}

	url, err := r.store.Get(ctx, code)
	if err != nil {
		return "", err
	}

	r.cache(ctx, code, url)

	return url, nil
}

// Reserve reserves the code in the underlying store and caches it on success.
func (r *RedisCacheRepository) Reserve(ctx context.Context, link *shortener.ShortLink) error {
	if err := r.store.Reserve(ctx, link); err != nil {
		return err
	}

	r.cache(ctx, link.Code, link.LongURL)

	return nil
}

func (r *RedisCacheRepository) cache(ctx context.Context, code shortener.Code, url string) {
	if err := r.client.Set(ctx, r.prefix+string(code), url, r.ttl).Err(); err != nil {
		r.logger.Warn("failed to cache link", zap.String("code", string(code)), zap.Error(err))
	}
}

// Shutdown is a no-op for RedisCacheRepository (client managed externally).
func (r *RedisCacheRepository) Shutdown() error {
	return nil
}

var _ shortener.Repository = (*RedisCacheRepository)(nil)
