// Package cache fronts read-heavy queries with go-redis/cache. Without a
// Redis client the store keeps entries in a process-local TinyLFU only.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = cache.ErrCacheMiss

type ReadOnlyCache interface {
	Get(ctx context.Context, key string, target any) error
}

type Cache interface {
	ReadOnlyCache
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// UseCache returns the cached value for key, calling load on a miss and
// storing its result. A failing cache read is logged and treated as a miss,
// so only errors from load reach the caller.
func UseCache[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var v T
	err := c.Get(ctx, key, &v)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrMiss) {
		slog.WarnContext(ctx, "cache read failed, loading from source", "key", key, "error", err)
	}

	v, err = load()
	if err != nil {
		return v, err
	}

	// fire and forget
	//nolint:errcheck
	c.Set(ctx, key, v, ttl)
	return v, nil
}

type Store struct {
	instance *cache.Cache
}

// New builds a Store. client may be nil, in which case only the local cache
// is used. localTTL bounds how long the local copy of an entry lives.
func New(client redis.UniversalClient, localSize int, localTTL time.Duration) *Store {
	opts := &cache.Options{
		LocalCache: cache.NewTinyLFU(localSize, localTTL),
	}
	if client != nil {
		opts.Redis = client
	}
	return &Store{instance: cache.New(opts)}
}

func (s *Store) Get(ctx context.Context, key string, target any) error {
	return s.instance.Get(ctx, key, target)
}

func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return s.instance.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: value,
		TTL:   ttl,
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.instance.Delete(ctx, key)
	if errors.Is(err, ErrMiss) {
		return nil
	}
	return err
}

// Dial connects to the Redis server at url. An empty url returns a nil client.
func Dial(ctx context.Context, url string) (redis.UniversalClient, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
