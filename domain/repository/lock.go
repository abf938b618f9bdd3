package repository

import (
	"context"
	"time"
)

// IPublishLock guarantees at most one publish attempt in flight per post id.
// Acquire returns false when another run already holds the lock.
type IPublishLock interface {
	Acquire(ctx context.Context, postID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, postID string) error
}
