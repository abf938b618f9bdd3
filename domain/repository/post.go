package repository

import (
	"context"

	"postpilot/domain/model"
)

// IScheduledPost is the durable store of scheduled posts.
type IScheduledPost interface {
	Create(ctx context.Context, post *model.ScheduledPost) error
	GetByID(ctx context.Context, postID string) (*model.ScheduledPost, error)
	UpdateStatus(ctx context.Context, postID string, status string) error
}
