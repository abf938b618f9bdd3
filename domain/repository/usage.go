package repository

import (
	"context"

	"postpilot/domain/model"
)

// IUsageStats is the per-user usage-counter store swept by the retention jobs.
// DeleteDaily must be a partial update (only the named date keys are removed).
type IUsageStats interface {
	ListUserIDs(ctx context.Context) ([]string, error)
	GetDaily(ctx context.Context, userID string) (map[string]model.DailyUsage, error)
	DeleteDaily(ctx context.Context, userID string, dates []string) error
	IncrementPublishCount(ctx context.Context, userID string, date string) error
}
