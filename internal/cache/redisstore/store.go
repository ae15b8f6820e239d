// Package redisstore backs the payload cache with Redis for deployments
// that share a cache across replicas.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cafescout/cafescout/internal/observability"
)

type Option func(*redis.Options)

func WithPoolSize(n int) Option {
	return func(o *redis.Options) { o.PoolSize = n }
}

func WithDialTimeout(d time.Duration) Option {
	return func(o *redis.Options) { o.DialTimeout = d }
}

// Store satisfies cache.Interface. Entry lifetime is enforced by Redis
// expiry rather than lazy checks, and the capacity bound is delegated to the
// Redis maxmemory policy, so FIFO eviction does not apply to this driver.
type Store struct {
	rdb       *redis.Client
	logger    *slog.Logger
	ttl       time.Duration
	opTimeout time.Duration
}

func New(ctx context.Context, addr string, ttl time.Duration, logger *slog.Logger, opts ...Option) (*Store, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	ro := &redis.Options{
		Addr:         addr,
		PoolSize:     64,
		MinIdleConns: 4,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	}
	for _, f := range opts {
		f(ro)
	}

	rdb := redis.NewClient(ro)

	start := time.Now()
	err := rdb.Ping(ctx).Err()
	observability.ObserveCacheOp("ping", err, time.Since(start).Seconds())
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{
		rdb:       rdb,
		logger:    logger,
		ttl:       ttl,
		opTimeout: 250 * time.Millisecond,
	}, nil
}

func (s *Store) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.opTimeout)
}

func (s *Store) Get(key string) ([]byte, bool) {
	ctx, cancel := s.opCtx()
	defer cancel()

	start := time.Now()
	val, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCacheOp("get", nil, time.Since(start).Seconds())
		return nil, false
	}
	observability.ObserveCacheOp("get", err, time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("redis get", "key", key, "err", err)
		return nil, false
	}
	return val, true
}

func (s *Store) Set(key string, val []byte) {
	ctx, cancel := s.opCtx()
	defer cancel()

	start := time.Now()
	err := s.rdb.Set(ctx, key, val, s.ttl).Err()
	observability.ObserveCacheOp("set", err, time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("redis set", "key", key, "err", err)
	}
}

func (s *Store) Delete(keys ...string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := s.opCtx()
	defer cancel()

	start := time.Now()
	err := s.rdb.Del(ctx, keys...).Err()
	observability.ObserveCacheOp("del", err, time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("redis del", "keys", len(keys), "err", err)
	}
}

func (s *Store) Clear() {
	ctx, cancel := s.opCtx()
	defer cancel()

	start := time.Now()
	err := s.rdb.FlushDB(ctx).Err()
	observability.ObserveCacheOp("clear", err, time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("redis flushdb", "err", err)
	}
}

func (s *Store) Len() int {
	ctx, cancel := s.opCtx()
	defer cancel()

	n, err := s.rdb.DBSize(ctx).Result()
	if err != nil {
		s.logger.Error("redis dbsize", "err", err)
		return 0
	}
	return int(n)
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
