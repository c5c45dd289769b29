package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"invoice-reconciliation-service/internal/domain/repository"
	"invoice-reconciliation-service/pkg/logger"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RebuildLockKey is the Redis key guarding rebuilds
const RebuildLockKey = "lock:reconciliation:rebuild"

// RedisRebuildLocker serializes rebuilds across instances with a Redis lock.
// The lock is refreshed every ttl/3 until released, so a rebuild may outlive ttl.
type RedisRebuildLocker struct {
	locker *redislock.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewRedisRebuildLocker creates a locker on client
func NewRedisRebuildLocker(client *redis.Client, ttl time.Duration, logger logger.Logger) repository.RebuildLocker {
	return &RedisRebuildLocker{
		locker: redislock.New(client),
		ttl:    ttl,
		logger: logger,
	}
}

// Obtain takes the rebuild lock without retrying
func (l *RedisRebuildLocker) Obtain(ctx context.Context) (repository.ReleaseFunc, error) {
	lock, err := l.locker.Obtain(ctx, RebuildLockKey, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, repository.ErrLockNotObtained
	} else if err != nil {
		return nil, err
	}

	stop := keepAlive(context.WithoutCancel(ctx), l.ttl/3,
		func(ctx context.Context) error {
			return lock.Refresh(ctx, l.ttl, nil)
		},
		func(err error) {
			l.logger.Warn("Failed to refresh rebuild lock, another rebuild may start", "key", RebuildLockKey, "error", err)
		})

	return func(ctx context.Context) error {
		stop()
		err := lock.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			return nil
		}
		return err
	}, nil
}

// keepAlive calls refresh every interval until stop is called. Refresh
// failures are reported to onErr and end the loop.
func keepAlive(ctx context.Context, interval time.Duration, refresh func(context.Context) error, onErr func(error)) (stop func()) {
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := refresh(ctx); err != nil {
					if ctx.Err() == nil {
						onErr(err)
					}
					return
				}
			}
		}
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}

// LocalRebuildLocker serializes rebuilds within one process.
// Used when Redis is not configured.
type LocalRebuildLocker struct {
	sem chan struct{}
}

// NewLocalRebuildLocker creates an in-process locker
func NewLocalRebuildLocker() repository.RebuildLocker {
	return &LocalRebuildLocker{sem: make(chan struct{}, 1)}
}

// Obtain takes the lock or fails immediately when it is held
func (l *LocalRebuildLocker) Obtain(context.Context) (repository.ReleaseFunc, error) {
	select {
	case l.sem <- struct{}{}:
		return func(context.Context) error {
			<-l.sem
			return nil
		}, nil
	default:
		return nil, repository.ErrLockNotObtained
	}
}
