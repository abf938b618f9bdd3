package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"postpilot/domain/repository"
	"postpilot/infrastructure/logger"
)

const publishLockPrefix = "publish_lock:"

// PublishLock enforces at most one publish attempt in flight per post id,
// backed by SETNX with a TTL covering the whole fan-out. With a nil client the
// lock is disabled (single-instance dev mode) and Acquire always succeeds.
type PublishLock struct {
	client *redis.Client
}

func NewPublishLock(client *redis.Client) repository.IPublishLock {
	return &PublishLock{client: client}
}

func (l *PublishLock) Acquire(ctx context.Context, postID string, ttl time.Duration) (bool, error) {
	if l.client == nil {
		logger.GetLogger().Debug("Redis not available - publish lock disabled")
		return true, nil
	}
	return l.client.SetNX(ctx, publishLockPrefix+postID, "1", ttl).Result()
}

func (l *PublishLock) Release(ctx context.Context, postID string) error {
	if l.client == nil {
		return nil
	}
	return l.client.Del(ctx, publishLockPrefix+postID).Err()
}
