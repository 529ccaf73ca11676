package redis_client

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	connectAttempts = 5
	pingTimeout     = 3 * time.Second
)

type Options struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisClient connects and pings, retrying with a doubling delay so the
// API can start alongside a Redis container that is still booting.
func NewRedisClient(ctx context.Context, opts Options) (*redis.Client, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: min(runtime.NumCPU()*8, 512),
	})

	delay := 250 * time.Millisecond
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = rc.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			return rc, nil
		}
		zap.L().Warn("redis_connect_retry", zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			_ = rc.Close()
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	_ = rc.Close()
	zap.L().Error("redis_connect", zap.Error(err))
	return nil, fmt.Errorf("redis connection failed: %w", err)
}
