package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"postpilot/infrastructure/logger"
)

// NewCache creates the shared Redis client. A failed ping is returned to the
// caller, who decides whether to continue without Redis-backed features.
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis ping failed")
		return client, err
	}
	return client, nil
}
