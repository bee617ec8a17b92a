// Package redislock provides a best-effort distributed lock used to keep
// concurrent recalibration triggers for the same user from racing each
// other across instances.
package redislock

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/foodenough/foodenough-backend/internal/logger"
)

type Locker interface {
	// Acquire returns a release func when the lock is taken, or false when
	// another holder owns it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error)
	Close() error
}

type redisLocker struct {
	log *logger.Logger
	rdb *goredis.Client
}

// New connects to REDIS_ADDR. When the env is unset it returns a no-op
// locker so single-instance deployments run without redis; the database
// unique index still backs the lock up.
func New(log *logger.Logger) (Locker, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		log.Warn("REDIS_ADDR not set, using in-process no-op locker")
		return noopLocker{}, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisLocker{
		log: log.With("service", "RedisLocker"),
		rdb: rdb,
	}, nil
}

func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := fmt.Sprintf("%d", time.Now().UnixNano())
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		relCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		// Only delete if we still hold it; a lapsed TTL may have handed
		// the key to another instance.
		current, getErr := l.rdb.Get(relCtx, key).Result()
		if getErr == nil && current == token {
			_ = l.rdb.Del(relCtx, key).Err()
		}
	}
	return release, true, nil
}

func (l *redisLocker) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}

type noopLocker struct{}

func (noopLocker) Acquire(_ context.Context, _ string, _ time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}

func (noopLocker) Close() error { return nil }
